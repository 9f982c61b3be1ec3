package validation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// MissingASINsExample is the usage hint returned with a missing asins parameter.
const MissingASINsExample = "?action=getProducts&asins=B07ZPKBL9V,B08XYZ123"

// BindAndValidate binds the query string into out and runs validation.
// If validation fails, it writes a 400 response and returns an error for the handler to short-circuit.
func BindAndValidate(c *gin.Context, out *GatewayQuery, v *validatorv10.Validate) error {
	if err := c.ShouldBindQuery(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query string",
			"msg":   err.Error(),
		})
		return err
	}
	if out.Action == "" {
		out.Action = ActionHealth
	}

	err := v.Struct(out)
	if err == nil {
		return nil
	}

	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return err
	}
	for _, fe := range ve {
		switch fe.StructField() {
		case "Action":
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid action",
				"available": Actions,
			})
			return err
		case "ASINs":
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing required parameter: asins",
				"example": MissingASINsExample,
			})
			return err
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "validation_failed",
		"fields": validationErrorsToMap(ve),
	})
	return err
}

func validationErrorsToMap(ve validatorv10.ValidationErrors) map[string]string {
	out := map[string]string{}
	for _, fe := range ve {
		out[fe.StructNamespace()] = fe.Error()
	}
	return out
}
