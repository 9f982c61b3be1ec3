// Command authcheck verifies the STS and LWA credentials the gateway is
// deployed with and optionally resolves one ASIN end to end.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/app"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/pricing"
)

func main() {
	asin := flag.String("asin", "", "also fetch this ASIN through getProducts")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup(a.Config.Log.Level, "text"); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, a, *asin, os.Stdout); err != nil {
		logging.WithComponent("authcheck").WithError(err).Error("Check failed")
		fmt.Fprintf(os.Stderr, "FAIL %v\n", err)
		os.Exit(1)
	}
}

// run performs each check in order and stops at the first failure.
func run(ctx context.Context, a *app.App, asin string, out io.Writer) error {
	fmt.Fprintf(out, "mode:        %s\n", a.Config.SPAPI.Mode())
	fmt.Fprintf(out, "region:      %s\n", a.Config.SPAPI.Region)
	fmt.Fprintf(out, "marketplace: %s\n", a.Config.SPAPI.MarketplaceID)
	fmt.Fprintf(out, "role:        %s\n", logging.MaskSensitiveData(a.Config.AWS.RoleARN))

	cred, err := a.Credentials.Credential(ctx)
	if err != nil {
		return fmt.Errorf("sts assume role [%s]: %s", pricing.ErrorCode(err, pricing.UnknownErrorCode), pricing.ErrorMessage(err))
	}
	fmt.Fprintf(out, "OK sts:      access key %s, expires %s\n",
		logging.MaskSensitiveData(cred.AccessKeyID), cred.Expiration.UTC().Format(time.RFC3339))

	tok, err := a.Tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("lwa token exchange [%s]: %s", pricing.ErrorCode(err, pricing.UnknownErrorCode), pricing.ErrorMessage(err))
	}
	fmt.Fprintf(out, "OK lwa:      access token %s, expires %s\n",
		logging.MaskSensitiveData(tok.AccessToken), tok.ExpiresAt.UTC().Format(time.RFC3339))

	if asin == "" {
		return nil
	}

	logging.WithComponentAndFields("authcheck", log.Fields{"asin": asin}).Debug("Fetching product")
	results, err := a.Service.FetchProducts(ctx, []string{asin})
	if err != nil {
		return fmt.Errorf("getProducts: %w", err)
	}
	body, err := json.MarshalIndent(results[0], "", "  ")
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	fmt.Fprintf(out, "%s\n", body)
	if e := results[0].Err; e != nil {
		return fmt.Errorf("getProducts %s [%s]: %s", asin, e.Code, e.Message)
	}
	fmt.Fprintf(out, "OK sp-api:   %s\n", asin)
	return nil
}
