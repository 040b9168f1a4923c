package selection

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/denken-cbt/backend/internal/domain/examconfig"
	"github.com/denken-cbt/backend/internal/domain/question"
)

// Selector draws balanced question sets for new exam sessions. Selection is
// randomized per call; pass a seeded *rand.Rand to make tests reproducible.
type Selector struct {
	rng *rand.Rand
}

// New creates a Selector. A nil rng gets a time-seeded source.
func New(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// SelectBalanced returns up to total questions split evenly across the fixed
// categories, honoring the weighting config within each category. Leftover
// slots from non-divisibility or category shortage are back-filled from the
// remaining eligible pool across all categories. The result never contains
// duplicate ids; a short catalog yields a short result, never an error.
func (s *Selector) SelectBalanced(all []question.Question, total int, cfg examconfig.ExamConfig) []question.Question {
	selected := []question.Question{}
	if total <= 0 || len(all) == 0 {
		return selected
	}
	cfg = cfg.Normalize()

	cats := question.Categories()
	quota := total / len(cats)

	picked := make(map[int]bool, total)
	var backfillPool []question.Question

	for _, cat := range cats {
		pool := byCategory(all, cat)
		eligible := s.eligiblePool(pool, cfg)
		take := s.pickFromPool(pool, quota, cfg)
		for _, q := range take {
			picked[q.ID] = true
		}
		selected = append(selected, take...)
		backfillPool = append(backfillPool, eligible...)
	}

	// Back-fill leftover slots from the unselected remainder, uniformly.
	if len(selected) < total {
		rest := make([]question.Question, 0, len(backfillPool))
		for _, q := range backfillPool {
			if !picked[q.ID] {
				rest = append(rest, q)
			}
		}
		s.shuffle(rest)
		for _, q := range rest {
			if len(selected) >= total {
				break
			}
			picked[q.ID] = true
			selected = append(selected, q)
		}
	}

	return selected
}

// SelectCategory is the single-category variant used by drill mode: up to
// count questions from cat only, under the same weight-filter/ratio policy.
func (s *Selector) SelectCategory(all []question.Question, cat question.Category, count int, cfg examconfig.ExamConfig) []question.Question {
	if count <= 0 {
		return []question.Question{}
	}
	cfg = cfg.Normalize()
	return s.pickFromPool(byCategory(all, cat), count, cfg)
}

// eligiblePool returns the questions of pool that the active policy could
// ever select, used to bound back-filling. Under filter mode this is the
// allow-listed subset, widened to the whole pool when filtering would empty
// it. Under ratio mode a non-empty ratio set extends to the whole pool (the
// category-wide fallback), while an empty ratio set excludes the category
// entirely.
func (s *Selector) eligiblePool(pool []question.Question, cfg examconfig.ExamConfig) []question.Question {
	if cfg.WeightingEnabled && cfg.Mode == examconfig.ModeRatio {
		if len(cfg.WeightRatios) == 0 {
			return nil
		}
		return pool
	}
	eligible := filterAllowed(pool, cfg)
	if len(eligible) == 0 {
		return pool
	}
	return eligible
}

// pickFromPool selects up to count questions from a single category's pool.
func (s *Selector) pickFromPool(pool []question.Question, count int, cfg examconfig.ExamConfig) []question.Question {
	if count <= 0 || len(pool) == 0 {
		return []question.Question{}
	}
	if cfg.WeightingEnabled && cfg.Mode == examconfig.ModeRatio {
		return s.pickByRatio(pool, count, cfg)
	}
	return s.pickFiltered(pool, count, cfg)
}

// pickFiltered applies the allow-list filter, then draws uniformly without
// replacement. An over-strict filter fails open to the whole pool so a
// non-empty category never yields zero questions in filter mode.
func (s *Selector) pickFiltered(pool []question.Question, count int, cfg examconfig.ExamConfig) []question.Question {
	eligible := filterAllowed(pool, cfg)
	if len(eligible) == 0 {
		eligible = pool
	}
	shuffled := s.shuffled(eligible)
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// pickByRatio draws per-weight bucket shares derived from the configured
// ratios, normalized to the category quota with largest-remainder rounding.
// Bucket shortfall is redistributed to other buckets in ascending weight
// order, then to the category-wide pool. An empty ratio set yields zero
// questions from the category; this is deliberate and differs from the
// fail-open filter mode.
func (s *Selector) pickByRatio(pool []question.Question, count int, cfg examconfig.ExamConfig) []question.Question {
	if len(cfg.WeightRatios) == 0 {
		return []question.Question{}
	}

	weights := make([]int, 0, len(cfg.WeightRatios))
	for w := range cfg.WeightRatios {
		weights = append(weights, w)
	}
	sort.Ints(weights)

	buckets := make(map[int][]question.Question, len(weights))
	for _, q := range pool {
		if _, ok := cfg.WeightRatios[q.Weight]; ok {
			buckets[q.Weight] = append(buckets[q.Weight], q)
		}
	}

	shares := apportion(cfg.WeightRatios, weights, count)

	picked := make(map[int]bool, count)
	selected := make([]question.Question, 0, count)
	for _, w := range weights {
		bucket := s.shuffled(buckets[w])
		n := shares[w]
		if n > len(bucket) {
			n = len(bucket)
		}
		for _, q := range bucket[:n] {
			picked[q.ID] = true
			selected = append(selected, q)
		}
	}

	// Redistribute shortfall to buckets with remaining supply, weight order.
	for _, w := range weights {
		if len(selected) >= count {
			break
		}
		for _, q := range s.shuffled(buckets[w]) {
			if len(selected) >= count {
				break
			}
			if !picked[q.ID] {
				picked[q.ID] = true
				selected = append(selected, q)
			}
		}
	}

	// Last resort: the category-wide pool, any weight.
	if len(selected) < count {
		for _, q := range s.shuffled(pool) {
			if len(selected) >= count {
				break
			}
			if !picked[q.ID] {
				picked[q.ID] = true
				selected = append(selected, q)
			}
		}
	}

	return selected
}

// apportion splits count into integer shares proportional to the ratios,
// using largest-remainder rounding so the shares sum to count exactly.
func apportion(ratios map[int]float64, weights []int, count int) map[int]int {
	var sum float64
	for _, w := range weights {
		sum += ratios[w]
	}
	shares := make(map[int]int, len(weights))
	if sum <= 0 {
		return shares
	}

	type frac struct {
		weight int
		part   float64
	}
	assigned := 0
	fracs := make([]frac, 0, len(weights))
	for _, w := range weights {
		exact := ratios[w] / sum * float64(count)
		base := int(math.Floor(exact))
		shares[w] = base
		assigned += base
		fracs = append(fracs, frac{weight: w, part: exact - float64(base)})
	}

	sort.SliceStable(fracs, func(i, j int) bool {
		if fracs[i].part != fracs[j].part {
			return fracs[i].part > fracs[j].part
		}
		return fracs[i].weight < fracs[j].weight
	})
	for i := 0; assigned < count && i < len(fracs); i++ {
		shares[fracs[i].weight]++
		assigned++
	}
	return shares
}

func byCategory(all []question.Question, cat question.Category) []question.Question {
	out := make([]question.Question, 0, len(all))
	for _, q := range all {
		if q.Category == cat {
			out = append(out, q)
		}
	}
	return out
}

func filterAllowed(pool []question.Question, cfg examconfig.ExamConfig) []question.Question {
	out := make([]question.Question, 0, len(pool))
	for _, q := range pool {
		if cfg.WeightAllowed(q.Weight) {
			out = append(out, q)
		}
	}
	return out
}

// shuffled returns a Fisher-Yates shuffled copy.
func (s *Selector) shuffled(qs []question.Question) []question.Question {
	out := make([]question.Question, len(qs))
	copy(out, qs)
	s.shuffle(out)
	return out
}

func (s *Selector) shuffle(qs []question.Question) {
	s.rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
