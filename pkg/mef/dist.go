package mef

import "math"
import "math/rand"

// The sampling primitives below draw one value from a named distribution
// given a *rand.Rand source. They are the deterministic, seed-driven
// functions spec.md §4.6 requires ("each deterministic function of a PRNG
// state that is seeded once per run"); the seeding and per-trial rand
// sources live in pkg/quant, which is the only caller during uncertainty
// propagation. Point-value (non-sampling) evaluation uses the distribution
// mean instead, computed alongside each sampler.

// SampleUniform draws from Uniform(a, b).
func SampleUniform(r *rand.Rand, a, b float64) float64 {
	return a + r.Float64()*(b-a)
}

// MeanUniform is E[Uniform(a, b)].
func MeanUniform(a, b float64) float64 { return (a + b) / 2 }

// SampleTriangular draws from Triangular(a, mode, b) via inverse CDF.
func SampleTriangular(r *rand.Rand, a, mode, b float64) float64 {
	u := r.Float64()
	fc := (mode - a) / (b - a)
	if u < fc {
		return a + math.Sqrt(u*(b-a)*(mode-a))
	}
	return b - math.Sqrt((1-u)*(b-a)*(b-mode))
}

// MeanTriangular is E[Triangular(a, mode, b)].
func MeanTriangular(a, mode, b float64) float64 { return (a + mode + b) / 3 }

// SampleNormal draws from Normal(mu, sigma).
func SampleNormal(r *rand.Rand, mu, sigma float64) float64 {
	return mu + r.NormFloat64()*sigma
}

// SampleLogNormal draws from a distribution whose log is Normal(mu, sigma).
func SampleLogNormal(r *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(SampleNormal(r, mu, sigma))
}

// MeanLogNormal is E[LogNormal(mu, sigma)].
func MeanLogNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*sigma/2)
}

// SampleGamma draws from Gamma(shape k, scale theta) via Marsaglia-Tsang,
// extended to shape < 1 by the standard Gamma(k+1) * U^(1/k) boost trick.
func SampleGamma(r *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		u := r.Float64()
		return SampleGamma(r, shape+1, scale) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = r.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// MeanGamma is E[Gamma(shape, scale)].
func MeanGamma(shape, scale float64) float64 { return shape * scale }

// SampleBeta draws from Beta(alpha, beta) as X/(X+Y) of two Gammas.
func SampleBeta(r *rand.Rand, alpha, beta float64) float64 {
	x := SampleGamma(r, alpha, 1)
	y := SampleGamma(r, beta, 1)
	return x / (x + y)
}

// MeanBeta is E[Beta(alpha, beta)].
func MeanBeta(alpha, beta float64) float64 { return alpha / (alpha + beta) }

// SamplePoisson draws from Poisson(lambda) via Knuth's product-of-uniforms
// algorithm. Adequate for the moderate lambda values PRA parameters use;
// not intended for lambda in the thousands.
func SamplePoisson(r *rand.Rand, lambda float64) float64 {
	l := math.Exp(-lambda)
	k := 0.0
	p := 1.0
	for {
		k++
		p *= r.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// MeanPoisson is E[Poisson(lambda)].
func MeanPoisson(lambda float64) float64 { return lambda }

// SampleDiscreteChoice picks one of values by cumulative weight, the same
// cumulative-probability selection Actor.ExecuteTransition uses to choose
// among probabilistic transitions.
func SampleDiscreteChoice(r *rand.Rand, values []float64, weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	target := r.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target <= cumulative {
			return values[i]
		}
	}
	return values[len(values)-1]
}
