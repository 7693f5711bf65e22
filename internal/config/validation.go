// Package config provides configuration management for the Apex wagering engine.
package config

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("simpolicy", validateSimulationPolicy)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSimulationPolicy validates the Monte Carlo weighting policy
func validateSimulationPolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "direct", "noise":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Tier A must be a stricter probability bar than tier B
	if cfg.Tiers.AProbMin <= cfg.Tiers.BProbMin {
		return fmt.Errorf("tiers a_prob_min must exceed b_prob_min")
	}

	// The longshot fallback must be the tightest probability threshold
	if cfg.Chaos.FallbackLongshotProbMax > cfg.Chaos.FallbackTopProbMax {
		return fmt.Errorf("chaos fallback_longshot_prob_max cannot exceed fallback_top_prob_max")
	}

	// Vertical composite weights must form a convex blend
	for name, bet := range map[string]VerticalBetConfig{
		"exacta":   cfg.Vertical.Exacta,
		"trifecta": cfg.Vertical.Trifecta,
		"super":    cfg.Vertical.Super,
	} {
		if math.Abs(bet.RatingWeight+bet.ProbWeight-1.0) > 1e-9 {
			return fmt.Errorf("vertical %s rating_weight and prob_weight must sum to 1", name)
		}
		if bet.AnchorSize > bet.InclusionSize {
			return fmt.Errorf("vertical %s anchor_size cannot exceed inclusion_size", name)
		}
	}

	// Chaos legs may only widen
	if cfg.Horizontal.MaxPerLegChaos < cfg.Horizontal.MaxPerLeg {
		return fmt.Errorf("horizontal max_per_leg_chaos cannot be below max_per_leg")
	}

	// Leg floors must stay reachable under the leg caps
	for _, bet := range cfg.Horizontal.Bets {
		if bet.MinPerLeg > cfg.Horizontal.MaxPerLeg {
			return fmt.Errorf("horizontal %s min_per_leg exceeds max_per_leg", bet.Name)
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "simpolicy":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: direct, noise\n", field)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s (got '%v')\n", field, tag, value)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
