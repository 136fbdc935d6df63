// The neatgrid command runs a NEAT evolutionary search over controllers
// for the microgrid simulation: each genome in the population is
// decoded into a recurrent network, driven across one simulated
// episode, and scored by the reward the microgrid returns.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/arborian/neatgrid/evolution"
	"github.com/arborian/neatgrid/microgrid"
	"github.com/arborian/neatgrid/microgrid/dataio"
	"github.com/arborian/neatgrid/neat"
	"github.com/arborian/neatgrid/neat/genetics"
	"github.com/arborian/neatgrid/neat/network"
)

const (
	numInputs     = 8
	numOutputs    = 4
	episodeLength = 24 * 7
	fitnessGoal   = 1.0e9 // effectively unreachable; run exhausts maxGenerations
)

func main() {
	var contextPath = flag.String("context", "./data/microgrid.neat", "The NEAT options configuration file.")
	var upPricesPath = flag.String("up-prices", "./data/up_prices.csv", "CSV series of up-regulation prices.")
	var downPricesPath = flag.String("down-prices", "./data/down_prices.csv", "CSV series of down-regulation prices.")
	var generationPath = flag.String("generated-energy", "./data/generated_energy.csv", "CSV series of DER generated energy.")
	var pricesTempsPath = flag.String("prices-temps", "./data/base_prices_outdoor_temps.npy", "NumPy Nx2 array of (base_price, outdoor_temperature).")
	var timeLayout = flag.String("time-layout", time.RFC3339, "Timestamp layout used by the CSV series.")
	var generations = flag.Int("generations", 100, "Maximum number of generations to run.")
	var logLevel = flag.String("log_level", "", "The logger level to be used. Overrides the one set in configuration.")

	flag.Parse()

	seed := time.Now().Unix()
	rng := rand.New(rand.NewSource(seed))

	opts, err := neat.ReadNeatOptionsFromFile(*contextPath)
	if err != nil {
		log.Fatal("Failed to load NEAT options: ", err)
	}
	if len(*logLevel) > 0 {
		neat.LogLevel = neat.LoggerLevel(*logLevel)
	}

	series, err := loadSeries(*upPricesPath, *downPricesPath, *generationPath, *pricesTempsPath, *timeLayout)
	if err != nil {
		log.Fatal("Failed to load microgrid series data: ", err)
	}

	ev, err := evolution.NewEvolution(opts.NeatContext(), numInputs, numOutputs, rng)
	if err != nil {
		log.Fatal("Failed to initialize evolution: ", err)
	}

	fitnessFn := microgridFitness(series, seed)

	best, generation, err := ev.Run(fitnessFn, fitnessGoal, *generations, genetics.MeanSpeciesFitness, rng)
	if err != nil {
		log.Fatal("Evolution run failed: ", err)
	}

	fmt.Printf(">>> Finished at generation %d\n", generation)
	if best != nil && best.Fitness != nil {
		fmt.Printf(">>> Best genome %d: fitness=%.4f, nodes=%d, connections=%d\n",
			best.Key, *best.Fitness, len(best.Nodes)+len(best.Inputs), len(best.Connections))
	}
}

func loadSeries(upPath, downPath, genPath, pricesTempsPath, layout string) (microgrid.SeriesData, error) {
	up, err := readCSVColumn(upPath, layout)
	if err != nil {
		return microgrid.SeriesData{}, err
	}
	down, err := readCSVColumn(downPath, layout)
	if err != nil {
		return microgrid.SeriesData{}, err
	}
	generated, err := readCSVColumn(genPath, layout)
	if err != nil {
		return microgrid.SeriesData{}, err
	}

	ptFile, err := os.Open(pricesTempsPath)
	if err != nil {
		return microgrid.SeriesData{}, err
	}
	defer ptFile.Close()
	basePrices, outdoorTemps, err := dataio.LoadPricesAndTemps(ptFile)
	if err != nil {
		return microgrid.SeriesData{}, err
	}

	return microgrid.SeriesData{
		UpPrices:           up.Values,
		DownPrices:         down.Values,
		GeneratedEnergy:    generated.Values,
		BasePrices:         basePrices,
		OutdoorTemperature: outdoorTemps,
		Timestamps:         up.Timestamps,
	}, nil
}

func readCSVColumn(path, layout string) (dataio.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataio.TimeSeries{}, err
	}
	defer f.Close()
	return dataio.LoadSeries(f, layout, true)
}

// microgridFitness builds a FitnessFunc that runs every genome through
// its own episode of the microgrid, seeded deterministically off the
// genome's key so a given population is reproducible across runs with
// the same base seed.
func microgridFitness(series microgrid.SeriesData, baseSeed int64) evolution.FitnessFunc {
	return func(population map[int]*genetics.Genome) {
		for _, genome := range population {
			fitness := evaluateGenome(genome, series, baseSeed)
			genome.Fitness = &fitness
		}
	}
}

func evaluateGenome(genome *genetics.Genome, series microgrid.SeriesData, baseSeed int64) float64 {
	rng := rand.New(rand.NewSource(baseSeed ^ int64(genome.Key)))

	env, err := microgrid.NewEnvironment(microgrid.DefaultParams(), series, rng)
	if err != nil {
		return 0
	}
	net := network.Create(genome)

	var total float64
	obs := microgrid.State{}
	steps := episodeLength
	if steps > len(series.GeneratedEnergy) {
		steps = len(series.GeneratedEnergy)
	}
	for i := 0; i < steps; i++ {
		inputs := observationToInputs(obs)
		outputs, err := net.Activate(inputs)
		if err != nil {
			break
		}
		action := outputsToAction(outputs)

		reward, next, err := env.Step(action, rng)
		if err != nil {
			break
		}
		total += reward
		obs = next
	}
	return total
}

func observationToInputs(s microgrid.State) []float64 {
	return []float64{
		s.TCLStateOfCharge,
		s.ESSStateOfCharge,
		s.OutdoorTemperature / 40.0,
		s.GeneratedEnergy / 500.0,
		s.UpPrice,
		s.BaseResidentialLoad / 500.0,
		float64(s.PricingCounter) / 10.0,
		float64(s.HourOfDay) / 24.0,
	}
}

func outputsToAction(outputs []float64) microgrid.Action {
	action := microgrid.Action{
		TCLLevel:   discretize(outputs[0], 3),
		PriceLevel: discretize(outputs[1], 4),
	}
	if outputs[2] > 0.5 {
		action.DeficiencyPriority = microgrid.ESSFirst
	} else {
		action.DeficiencyPriority = microgrid.BuyFirst
	}
	if outputs[3] > 0.5 {
		action.ExcessPriority = microgrid.StoreFirst
	} else {
		action.ExcessPriority = microgrid.SellFirst
	}
	return action
}

func discretize(v float64, max int) int {
	level := int(v * float64(max+1))
	if level < 0 {
		return 0
	}
	if level > max {
		return max
	}
	return level
}
