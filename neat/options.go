package neat

import (
	"context"

	"github.com/pkg/errors"
)

// Options holds the closed set of NEAT hyperparameters used by genome
// creation, mutation, speciation and reproduction. Every field here
// corresponds to a named parameter in the configuration surface of this
// module; nothing outside this struct is tunable.
type Options struct {
	PopulationSize           int     `yaml:"population_size"`
	ReproSurvivalRate        float64 `yaml:"repro_survival_rate"`
	MinSpeciesSize           int     `yaml:"min_species_size"`
	MaxStagnation            int     `yaml:"max_stagnation"`
	NumSurvivingEliteSpecies int     `yaml:"num_surviving_elite_species"`

	CompatibilityThreshold float64 `yaml:"compatibility_threshold"`
	DisjointCoefficient    float64 `yaml:"disjoint_coefficient"`
	WeightCoefficient      float64 `yaml:"weight_coefficient"`

	KeepDisabledProbability       float64 `yaml:"keep_disabled_probability"`
	NodeMutationProbability       float64 `yaml:"node_mutation_probability"`
	ConnectionMutationProbability float64 `yaml:"connection_mutation_probability"`
	AdjustWeightProb              float64 `yaml:"adjust_weight_prob"`
	ReplaceWeightProb             float64 `yaml:"replace_weight_prob"`
	AdjustBiasProb                float64 `yaml:"adjust_bias_prob"`
	ReplaceBiasProb               float64 `yaml:"replace_bias_prob"`

	WeightInitMean   float64 `yaml:"weight_init_mean"`
	WeightInitStdev  float64 `yaml:"weight_init_stdev"`
	WeightMaxAdjust  float64 `yaml:"weight_max_adjust"`
	WeightMinVal     float64 `yaml:"weight_min_val"`
	WeightMaxVal     float64 `yaml:"weight_max_val"`

	BiasInitMean  float64 `yaml:"bias_init_mean"`
	BiasInitStdev float64 `yaml:"bias_init_stdev"`
	BiasMaxAdjust float64 `yaml:"bias_max_adjust"`
	BiasMinVal    float64 `yaml:"bias_min_val"`
	BiasMaxVal    float64 `yaml:"bias_max_val"`

	// LogLevel controls the package-level logger (see log.go); not part
	// of the NEAT algorithm itself but carried alongside the rest of the
	// configuration the way the teacher's Options does.
	LogLevel string `yaml:"log_level"`
}

// WeightOptions narrows an Options value down to the five numbers that
// parameterize sampling and clamping of one real-valued gene attribute
// (used for both connection weights and node biases).
type WeightOptions struct {
	InitMean  float64
	InitStdev float64
	MaxAdjust float64
	MinVal    float64
	MaxVal    float64
}

// Weight returns the WeightOptions view for connection weights.
func (o *Options) Weight() WeightOptions {
	return WeightOptions{
		InitMean:  o.WeightInitMean,
		InitStdev: o.WeightInitStdev,
		MaxAdjust: o.WeightMaxAdjust,
		MinVal:    o.WeightMinVal,
		MaxVal:    o.WeightMaxVal,
	}
}

// Bias returns the WeightOptions view for node biases.
func (o *Options) Bias() WeightOptions {
	return WeightOptions{
		InitMean:  o.BiasInitMean,
		InitStdev: o.BiasInitStdev,
		MaxAdjust: o.BiasMaxAdjust,
		MinVal:    o.BiasMinVal,
		MaxVal:    o.BiasMaxVal,
	}
}

// Validate checks the configuration for internal consistency, returning an
// error wrapping ErrConfig describing the first problem found.
func (o *Options) Validate() error {
	switch {
	case o.PopulationSize <= 0:
		return errors.Wrap(ErrConfig, "population_size must be positive")
	case o.MinSpeciesSize <= 0:
		return errors.Wrap(ErrConfig, "min_species_size must be positive")
	case o.MaxStagnation < 0:
		return errors.Wrap(ErrConfig, "max_stagnation must not be negative")
	case o.NumSurvivingEliteSpecies < 0:
		return errors.Wrap(ErrConfig, "num_surviving_elite_species must not be negative")
	case o.CompatibilityThreshold <= 0:
		return errors.Wrap(ErrConfig, "compatibility_threshold must be positive")
	case o.ReproSurvivalRate <= 0 || o.ReproSurvivalRate > 1:
		return errors.Wrap(ErrConfig, "repro_survival_rate must be in (0, 1]")
	case o.WeightMinVal >= o.WeightMaxVal:
		return errors.Wrap(ErrConfig, "weight_min_val must be less than weight_max_val")
	case o.BiasMinVal >= o.BiasMaxVal:
		return errors.Wrap(ErrConfig, "bias_min_val must be less than bias_max_val")
	case o.KeepDisabledProbability < 0 || o.KeepDisabledProbability > 1:
		return errors.Wrap(ErrConfig, "keep_disabled_probability must be in [0, 1]")
	case o.NodeMutationProbability < 0 || o.NodeMutationProbability > 1:
		return errors.Wrap(ErrConfig, "node_mutation_probability must be in [0, 1]")
	case o.ConnectionMutationProbability < 0 || o.ConnectionMutationProbability > 1:
		return errors.Wrap(ErrConfig, "connection_mutation_probability must be in [0, 1]")
	}
	return nil
}

// NeatContext wraps a background context.Context carrying these options,
// the way evolution.NewEvolution expects to receive them.
func (o *Options) NeatContext() context.Context {
	return NewContext(context.Background(), o)
}
