// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hexColorRegex  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("clock_time", validateClockTime)
	_ = v.RegisterValidation("transaction_type", oneOf("income", "expense"))
	_ = v.RegisterValidation("category_type", oneOf("income", "expense"))
	_ = v.RegisterValidation("budget_period", oneOf("daily", "weekly", "monthly", "yearly"))
	_ = v.RegisterValidation("budget_type", oneOf("fixed", "percentage", "rolling_average"))
	_ = v.RegisterValidation("budget_priority", oneOf("critical", "essential", "important", "discretionary"))
	_ = v.RegisterValidation("income_frequency", oneOf("weekly", "biweekly", "monthly", "annually"))
	_ = v.RegisterValidation("methodology_type", oneOf("zero_based", "percentage_based", "envelope"))
	_ = v.RegisterValidation("alert_type", oneOf("budget_threshold", "anomaly", "pace", "variance", "health"))
	_ = v.RegisterValidation("alert_severity", oneOf("high", "medium", "low"))
	_ = v.RegisterValidation("alert_status", oneOf("active", "dismissed", "snoozed", "all"))
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateClockTime(fl validator.FieldLevel) bool {
	return clockTimeRegex.MatchString(fl.Field().String())
}

func oneOf(values ...string) validator.Func {
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		allowed[v] = true
	}
	return func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	}
}
