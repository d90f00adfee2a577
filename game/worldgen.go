package game

import (
	"log/slog"
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

// orchardPersistence is the amplitude falloff between noise octaves.
const orchardPersistence = 0.5

// generateOrchard plants round(tree_density * cells) trees on the cells with
// the highest orchard noise, so trees cluster into groves. With a zero noise
// scale every cell draws a uniform value instead. Each tree bears apples with
// probability apple_ratio and starts with a random stock in [0, MaxFoodStock].
func (g *Game) generateOrchard() {
	wc := g.cfg.World
	geom := g.env.Geom
	n := geom.Cells()
	trees := int(math.Round(wc.TreeDensity * float64(n)))
	if trees == 0 {
		return
	}

	var noise opensimplex.Noise
	if wc.NoiseScale > 0 {
		noise = opensimplex.NewNormalized(g.seed)
	}

	values := make([]float64, n)
	for i := range values {
		if noise == nil {
			values[i] = g.rng.Float64()
			continue
		}
		x, y := float64(i%geom.Width), float64(i/geom.Width)
		values[i] = octaveNoise(noise, x, y, wc.NoiseOctaves, wc.NoiseScale, orchardPersistence)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	apples := 0
	for _, i := range order[:trees] {
		cell := grid.Cell{X: i % geom.Width, Y: i / geom.Width}
		t := components.Orange
		if g.rng.Float64() < wc.AppleRatio {
			t = components.Apple
			apples++
		}
		g.plantTree(cell, t, g.rng.Intn(components.MaxFoodStock+1))
	}

	slog.Debug("orchard_planted", "trees", trees, "apple_trees", apples, "cells", n)
}

// plantTree creates a food source and indexes it.
func (g *Game) plantTree(cell grid.Cell, t components.FoodType, stock int) ecs.Entity {
	pos := components.PositionAt(cell.Coords())
	src := components.FoodSource{Type: t, Stock: stock}
	e := g.treeMapper.NewEntity(&pos, &src)
	g.env.Food.Insert(cell, e)
	return e
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// spawnInitialPopulation places starting_people people on distinct random
// cells. They start at age 0 with the configured initial stock.
func (g *Game) spawnInitialPopulation() {
	geom := g.env.Geom
	n := g.cfg.Game.StartingPeople
	stock := components.Stock{Apples: g.cfg.Game.InitialApples, Oranges: g.cfg.Game.InitialOranges}

	for _, i := range g.rng.Perm(geom.Cells())[:n] {
		cell := grid.Cell{X: i % geom.Width, Y: i / geom.Width}
		g.spawnPerson(cell, components.Sex(g.rng.Intn(2)), stock)
	}

	slog.Debug("population_spawned", "people", n)
}
