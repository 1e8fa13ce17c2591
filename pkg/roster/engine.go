package roster

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
)

// Default tuning knobs, overridable per GenerateInput.
const (
	DefaultTrials         = 500
	DefaultRescueAttempts = 50
)

// Scoring weights, frozen per the Open Question decision recorded in
// DESIGN.md (spec §4.3's first calibration).
const (
	scoreFilledDay        = 1_000_000
	scoreFairnessPerRange = 1000
	scoreAvailableBonus   = 50
	scoreReluctantPenalty = 50
)

// GenerateInput is the on-call engine's input contract (spec §4.3).
type GenerateInput struct {
	Dates        []time.Time
	PeriodStart  time.Time
	Team         Team
	Prefs        *preference.Table
	TargetLimits map[string]int
	PreviousTail string // doctor on call the day before Dates[0], or "" if none

	Trials         int // N in spec §4.3; default DefaultTrials if zero
	RescueAttempts int // extra trials if the best trial still has gaps; default DefaultRescueAttempts if zero
	Seed           int64
}

// GenerateOutput is the on-call engine's output contract (spec §4.3).
type GenerateOutput struct {
	Roster            Roster
	Stats             Stats
	RejectionReasons  map[time.Time]map[string]RejectReason
	DeniedFixed       []DeniedFixedClaim
	Score             int64
}

// Generate runs the two-phase randomized heuristic described in spec §4.3
// for in.Trials independent trials, each pure and single-threaded, fanned
// out across a worker pool, and keeps the best-scoring result. It never
// returns an error for an infeasible day — that is represented in-band as
// an Unfilled roster entry plus a rejection reason — but it does return
// ErrInvalidInput for a malformed request.
func Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	if err := validateInput(in); err != nil {
		return GenerateOutput{}, err
	}

	trials := in.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	rescue := in.RescueAttempts
	if rescue <= 0 {
		rescue = DefaultRescueAttempts
	}

	best := runTrials(ctx, in, trials, in.Seed)

	// Rescue pass: if the best-scoring trial still has gaps, spend extra
	// trials hunting for any fully-filled roster regardless of score
	// (spec §9 / original_source/app.py's "deep search").
	if best.roster.FilledCount() < len(in.Dates) {
		rescued := runTrials(ctx, in, rescue, in.Seed+int64(trials)+1)
		if rescued.roster.FilledCount() == len(in.Dates) {
			best = rescued
		}
	}

	return GenerateOutput{
		Roster:           best.roster,
		Stats:            best.stats,
		RejectionReasons: best.rejections,
		DeniedFixed:      best.denied,
		Score:            best.score,
	}, nil
}

func validateInput(in GenerateInput) error {
	if len(in.Dates) == 0 {
		return fmt.Errorf("%w: empty date list", ErrInvalidInput)
	}
	for i := 1; i < len(in.Dates); i++ {
		if !in.Dates[i].Equal(in.Dates[i-1].AddDate(0, 0, 1)) {
			return fmt.Errorf("%w: dates not contiguous at index %d", ErrInvalidInput, i)
		}
	}
	known := make(map[string]bool)
	for _, d := range in.Team.All() {
		known[d.Name] = true
	}
	for doc := range in.TargetLimits {
		if !known[doc] {
			return fmt.Errorf("%w: target_limits references unknown doctor %q", ErrInvalidInput, doc)
		}
	}
	return nil
}

// trialResult is one complete run of the two-phase heuristic.
type trialResult struct {
	roster     Roster
	stats      Stats
	rejections map[time.Time]map[string]RejectReason
	denied     []DeniedFixedClaim
	score      int64
}

// runTrials fans out n independent trials across a worker pool sized to
// GOMAXPROCS and returns the best-scoring one. Each trial derives its own
// *rand.Rand from a per-trial subseed of rootSeed, so the whole run is
// reproducible from (seed, n, in).
func runTrials(ctx context.Context, in GenerateInput, n int, rootSeed int64) trialResult {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var (
		mu      sync.Mutex
		best    trialResult
		bestIdx int
		set     bool
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trialIdx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				rng := rand.New(rand.NewSource(rootSeed + int64(trialIdx)))
				result := runSingleTrial(in, rng)

				mu.Lock()
				// Equal scores tie-break on the lower trial index, so the
				// kept result does not depend on worker scheduling.
				if !set || result.score > best.score || (result.score == best.score && trialIdx < bestIdx) {
					best = result
					bestIdx = trialIdx
					set = true
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return best
}

// runSingleTrial runs one complete pass of Phase I (fixed resolution) and
// Phase II (rotation filling), then scores the resulting roster. It owns
// every piece of mutable state it touches — no hidden global accumulators
// (spec §9) — so trials never share state.
func runSingleTrial(in GenerateInput, rng *rand.Rand) trialResult {
	sch := make(Roster, len(in.Dates))
	stats := newStats(in.Team)
	weekly := make(weeklyCounts)
	rejections := make(map[time.Time]map[string]RejectReason)
	var denied []DeniedFixedClaim

	runPhaseI(in, sch, stats, weekly, &denied, rng)
	runPhaseII(in, sch, stats, weekly, rejections, rng)

	score := scoreRoster(in, sch, stats)
	return trialResult{roster: sch, stats: stats, rejections: rejections, denied: denied, score: score}
}

// runPhaseI resolves every date where at least one doctor declared FIXED
// status (spec §4.3 Phase I).
func runPhaseI(in GenerateInput, sch Roster, stats Stats, weekly weeklyCounts, denied *[]DeniedFixedClaim, rng *rand.Rand) {
	fixedNames := in.Team.FixedNames()
	rotationNames := in.Team.RotationNames()

	for _, d := range in.Dates {
		fixedClaimants := in.Prefs.DoctorsFixedOn(d, fixedNames)
		var winner string
		var losers []string

		switch {
		case len(fixedClaimants) > 0:
			winner = fixedClaimants[0]
			losers = fixedClaimants[1:]
		default:
			rotationClaimants := in.Prefs.DoctorsFixedOn(d, rotationNames)
			if len(rotationClaimants) > 0 {
				idx := rng.Intn(len(rotationClaimants))
				winner = rotationClaimants[idx]
				for i, name := range rotationClaimants {
					if i != idx {
						losers = append(losers, name)
					}
				}
			}
		}

		if winner == "" {
			continue
		}

		sch[d] = winner
		stats.record(winner, d)
		weekly.record(calendar.WeekKey(d, in.PeriodStart), winner)

		for _, loser := range losers {
			*denied = append(*denied, DeniedFixedClaim{
				Date:   d,
				Doctor: loser,
				Winner: winner,
				Reason: fmt.Sprintf("conflict with %s", winner),
			})
		}
	}
}

// runPhaseII fills every date Phase I left unresolved (spec §4.3 Phase II).
func runPhaseII(in GenerateInput, sch Roster, stats Stats, weekly weeklyCounts, rejections map[time.Time]map[string]RejectReason, rng *rand.Rand) {
	var unresolved []time.Time
	for _, d := range in.Dates {
		if _, ok := sch[d]; !ok {
			unresolved = append(unresolved, d)
		}
	}

	// Hardest days first: ascending availability count, random tie-break.
	difficulty := make(map[time.Time]float64, len(unresolved))
	for _, d := range unresolved {
		difficulty[d] = float64(availabilityCount(in.Team, in.Prefs, d))*1e6 + rng.Float64()
	}
	sort.Slice(unresolved, func(i, j int) bool {
		return difficulty[unresolved[i]] < difficulty[unresolved[j]]
	})

	for _, d := range unresolved {
		group := calendar.GroupOf(d)
		ctx := evalContext{
			date:         d,
			periodStart:  in.PeriodStart,
			prefs:        in.Prefs,
			schedule:     sch,
			stats:        stats,
			weekly:       weekly,
			targetLimits: in.TargetLimits,
			previousTail: in.PreviousTail,
		}

		candidates, rej := buildCandidates(in.Team, ctx, group, rng)
		if len(candidates) == 0 {
			sch[d] = Unfilled
			rejections[d] = rej
			continue
		}

		chosen := pickCandidate(candidates)
		sch[d] = chosen
		stats.record(chosen, d)
		weekly.record(calendar.WeekKey(d, in.PeriodStart), chosen)
	}
}

// scoreRoster implements spec §4.3's roster scoring: dominant filled-day
// bonus, day-group fairness penalty, and a preference bonus/penalty on
// every rotation-filled day.
func scoreRoster(in GenerateInput, sch Roster, stats Stats) int64 {
	var score int64

	for _, d := range in.Dates {
		doc := sch[d]
		if doc == Unfilled {
			continue
		}
		score += scoreFilledDay

		if isRotation(in.Team, doc) {
			if rec, ok := in.Prefs.Get(d, doc); ok {
				switch rec.Status {
				case preference.Available:
					score += scoreAvailableBonus
				case preference.Reluctant:
					score -= scoreReluctantPenalty
				}
			}
		}
	}

	for _, group := range calendar.AllDayGroups {
		min, max := -1, -1
		for _, doc := range in.Team.RotationNames() {
			c := stats[doc].Group[group]
			if min == -1 || c < min {
				min = c
			}
			if max == -1 || c > max {
				max = c
			}
		}
		if min >= 0 {
			score -= int64(max-min) * scoreFairnessPerRange
		}
	}

	return score
}

func isRotation(team Team, name string) bool {
	for _, d := range team.Rotation {
		if d.Name == name {
			return true
		}
	}
	return false
}
