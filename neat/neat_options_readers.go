package neat

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// LoadYAMLOptions loads NEAT options encoded as YAML.
func LoadYAMLOptions(r io.Reader) (*Options, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var opts Options
	if err = yaml.Unmarshal(content, &opts); err != nil {
		return nil, errors.Wrap(err, "failed to decode NEAT options from YAML")
	}
	if err = InitLogger(opts.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err = opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid NEAT options")
	}
	return &opts, nil
}

// LoadNeatOptions loads NEAT options from the legacy plain-text "key value"
// format, kept for parity with older configuration files.
func LoadNeatOptions(r io.Reader) (*Options, error) {
	c := &Options{}
	var name string
	var param string
	for {
		_, err := fmt.Fscanf(r, "%s %v\n", &name, &param)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch name {
		case "population_size":
			c.PopulationSize = cast.ToInt(param)
		case "repro_survival_rate":
			c.ReproSurvivalRate = cast.ToFloat64(param)
		case "min_species_size":
			c.MinSpeciesSize = cast.ToInt(param)
		case "max_stagnation":
			c.MaxStagnation = cast.ToInt(param)
		case "num_surviving_elite_species":
			c.NumSurvivingEliteSpecies = cast.ToInt(param)
		case "compatibility_threshold":
			c.CompatibilityThreshold = cast.ToFloat64(param)
		case "disjoint_coefficient":
			c.DisjointCoefficient = cast.ToFloat64(param)
		case "weight_coefficient":
			c.WeightCoefficient = cast.ToFloat64(param)
		case "keep_disabled_probability":
			c.KeepDisabledProbability = cast.ToFloat64(param)
		case "node_mutation_probability":
			c.NodeMutationProbability = cast.ToFloat64(param)
		case "connection_mutation_probability":
			c.ConnectionMutationProbability = cast.ToFloat64(param)
		case "adjust_weight_prob":
			c.AdjustWeightProb = cast.ToFloat64(param)
		case "replace_weight_prob":
			c.ReplaceWeightProb = cast.ToFloat64(param)
		case "adjust_bias_prob":
			c.AdjustBiasProb = cast.ToFloat64(param)
		case "replace_bias_prob":
			c.ReplaceBiasProb = cast.ToFloat64(param)
		case "weight_init_mean":
			c.WeightInitMean = cast.ToFloat64(param)
		case "weight_init_stdev":
			c.WeightInitStdev = cast.ToFloat64(param)
		case "weight_max_adjust":
			c.WeightMaxAdjust = cast.ToFloat64(param)
		case "weight_min_val":
			c.WeightMinVal = cast.ToFloat64(param)
		case "weight_max_val":
			c.WeightMaxVal = cast.ToFloat64(param)
		case "bias_init_mean":
			c.BiasInitMean = cast.ToFloat64(param)
		case "bias_init_stdev":
			c.BiasInitStdev = cast.ToFloat64(param)
		case "bias_max_adjust":
			c.BiasMaxAdjust = cast.ToFloat64(param)
		case "bias_min_val":
			c.BiasMinVal = cast.ToFloat64(param)
		case "bias_max_val":
			c.BiasMaxVal = cast.ToFloat64(param)
		case "log_level":
			c.LogLevel = param
		default:
			return nil, errors.Errorf("unknown configuration parameter found: %s = %s", name, param)
		}
	}
	if err := InitLogger(c.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadNeatOptionsFromFile reads NEAT options from configFilePath, choosing
// the YAML or plain-text decoder based on the file extension.
func ReadNeatOptionsFromFile(configFilePath string) (*Options, error) {
	configFile, err := os.Open(configFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer configFile.Close()

	if strings.HasSuffix(configFilePath, "yml") || strings.HasSuffix(configFilePath, "yaml") {
		return LoadYAMLOptions(configFile)
	}
	return LoadNeatOptions(configFile)
}
