package discovery

import (
	"context"
	"strconv"
	"sync"
	"time"

	"keyscout/internal/metrics"
)

// searcher runs one discovery pass over a single working dataset. It is
// built fresh per run and not reused.
type searcher struct {
	val   *validator
	seeds []string
	cfg   Config
	log   Logger
	met   metrics.Backend
}

// scoreAll validates candidates concurrently and returns them ordered by
// descending score with lexicographic ties. complete reports whether every
// candidate was scored before the per-size budget expired; on parent context
// cancellation an error is returned instead.
//
// Workers write into private result slots, so output order depends only on
// the sort, never on goroutine scheduling.
func (s *searcher) scoreAll(ctx context.Context, cands [][]string) (scored []scoredCombination, complete bool, err error) {
	if len(cands) == 0 {
		return nil, true, nil
	}

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if s.cfg.PerSizeBudget > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.PerSizeBudget)
	}
	defer cancel()

	type slot struct {
		done  bool
		score float64
	}
	slots := make([]slot, len(cands))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i] = slot{done: true, score: s.val.score(cands[i])}
			}
		}()
	}

feed:
	for i := range cands {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	complete = true
	scored = make([]scoredCombination, 0, len(cands))
	for i, sl := range slots {
		if !sl.done {
			complete = false
			continue
		}
		scored = append(scored, scoredCombination{columns: cands[i], score: sl.score})
	}
	sortByScore(scored)
	return scored, complete, nil
}

// extend produces the next size's candidates by appending unused seed
// columns to each survivor. Survivors arrive in rank order and the result is
// capped, so the best extensions are generated first. Candidates are
// deduplicated by column set.
func extend(survivors []scoredCombination, seeds []string, limit int) [][]string {
	seen := make(map[string]struct{})
	var out [][]string
	for _, sv := range survivors {
		used := make(map[string]struct{}, len(sv.columns))
		for _, c := range sv.columns {
			used[c] = struct{}{}
		}
		for _, seed := range seeds {
			if _, ok := used[seed]; ok {
				continue
			}
			cand := append(append(make([]string, 0, len(sv.columns)+1), sv.columns...), seed)
			k := setKey(cand)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, cand)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func singles(seeds []string) [][]string {
	out := make([][]string, len(seeds))
	for i, s := range seeds {
		out[i] = []string{s}
	}
	return out
}

// auto is the beam search over seed columns. Each size keeps the top-scoring
// candidates as survivors for the next size whether or not they pass the
// acceptance threshold; only candidates at or above the threshold, at sizes
// within the configured range, are recorded.
func (s *searcher) auto(ctx context.Context) (recorded []scoredCombination, truncated bool, err error) {
	beam := s.cfg.combosPerSize()
	perfect := 0

	var survivors []scoredCombination
	for size := 1; size <= s.cfg.MaxSize; size++ {
		var cands [][]string
		if size == 1 {
			cands = singles(s.seeds)
		} else {
			cands = extend(survivors, s.seeds, maxCandidatesPerSize)
		}
		if len(cands) == 0 {
			break
		}

		start := time.Now()
		scored, complete, err := s.scoreAll(ctx, cands)
		if err != nil {
			return nil, false, err
		}
		s.observeSize(size, start, len(scored))

		if size >= s.cfg.MinSize {
			kept := s.record(&recorded, scored, size, beam, &perfect)
			s.log.Printf("size %d: validated %d of %d candidates, kept %d (threshold %.0f)",
				size, len(scored), len(cands), kept, acceptThreshold(size))
			if perfect >= s.cfg.GoodEnough {
				s.log.Printf("stopping early: %d perfect keys recorded", perfect)
				break
			}
		}

		if !complete {
			s.log.Printf("size %d: validation budget exhausted, keeping partial results", size)
			truncated = true
			break
		}

		survivors = scored
		if len(survivors) > beam {
			survivors = survivors[:beam]
		}
	}
	return recorded, truncated, nil
}

// guided extends a fixed base prefix. The base is scored first: a perfect
// base is returned alone, with no search. Otherwise extensions of two or
// more seed columns are searched; one-column extensions are scored only to
// rank survivors, never recorded, because a base one column short of a key
// is something callers discover cheaply themselves.
func (s *searcher) guided(ctx context.Context, base []string) (recorded []scoredCombination, truncated bool, err error) {
	baseScore := s.val.score(base)
	if baseScore >= perfectScore {
		s.log.Printf("base %v is already a perfect key", base)
		return []scoredCombination{{columns: append([]string(nil), base...), score: baseScore}}, false, nil
	}

	inBase := make(map[string]struct{}, len(base))
	for _, c := range base {
		inBase[c] = struct{}{}
	}
	seeds := make([]string, 0, len(s.seeds))
	for _, c := range s.seeds {
		if _, ok := inBase[c]; !ok {
			seeds = append(seeds, c)
		}
	}

	beam := s.cfg.combosPerSize()
	perfect := 0

	var survivors []scoredCombination
	for ext := 1; ext <= s.cfg.MaxSize-len(base); ext++ {
		var exts [][]string
		if ext == 1 {
			exts = singles(seeds)
		} else {
			exts = extend(survivors, seeds, maxCandidatesPerSize)
		}
		if len(exts) == 0 {
			break
		}

		cands := make([][]string, len(exts))
		for i, e := range exts {
			cands[i] = append(append(make([]string, 0, len(base)+len(e)), base...), e...)
		}

		size := len(base) + ext
		start := time.Now()
		scored, complete, err := s.scoreAll(ctx, cands)
		if err != nil {
			return nil, false, err
		}
		s.observeSize(size, start, len(scored))

		if ext >= 2 && size >= s.cfg.MinSize {
			kept := s.record(&recorded, scored, size, beam, &perfect)
			s.log.Printf("size %d: validated %d base extensions, kept %d (threshold %.0f)",
				size, len(scored), kept, acceptThreshold(size))
			if perfect >= s.cfg.GoodEnough {
				s.log.Printf("stopping early: %d perfect keys recorded", perfect)
				break
			}
		}

		if !complete {
			s.log.Printf("size %d: validation budget exhausted, keeping partial results", size)
			truncated = true
			break
		}

		// Survivors carry only the extension columns; the base prefix is
		// re-attached when the next size's candidates are built.
		survivors = survivors[:0]
		for _, sc := range scored {
			survivors = append(survivors, scoredCombination{columns: sc.columns[len(base):], score: sc.score})
			if len(survivors) >= beam {
				break
			}
		}
	}

	// No extension made the cut. A base that clears the threshold on its own
	// is still worth reporting over returning nothing, but only at reportable
	// sizes; an imperfect base below MinSize stays out of the results.
	if len(recorded) == 0 && !truncated && len(base) >= s.cfg.MinSize && baseScore >= acceptThreshold(len(base)) {
		recorded = []scoredCombination{{columns: append([]string(nil), base...), score: baseScore}}
	}
	return recorded, truncated, nil
}

// manual scores exactly the supplied combinations and keeps those clearing
// the acceptance threshold for their size.
func (s *searcher) manual(ctx context.Context, combos [][]string) (recorded []scoredCombination, truncated bool, err error) {
	start := time.Now()
	scored, complete, err := s.scoreAll(ctx, combos)
	if err != nil {
		return nil, false, err
	}
	s.met.ObserveHistogram(metrics.SizeDuration, time.Since(start).Seconds(), metrics.Labels{"size": "manual"})

	for _, sc := range scored {
		if sc.score >= acceptThreshold(len(sc.columns)) {
			recorded = append(recorded, sc)
			if sc.score >= perfectScore {
				s.met.IncCounter(metrics.PerfectKeysTotal, 1, metrics.Labels{"size": strconv.Itoa(len(sc.columns))})
			}
		}
	}
	s.log.Printf("manual: validated %d combinations, kept %d", len(scored), len(recorded))
	return recorded, !complete, nil
}

// record appends the top candidates passing the size threshold, at most beam
// of them, and counts newly found perfect keys. scored must already be
// sorted by descending score.
func (s *searcher) record(recorded *[]scoredCombination, scored []scoredCombination, size, beam int, perfect *int) int {
	thr := acceptThreshold(size)
	kept := 0
	for _, sc := range scored {
		if sc.score < thr || kept >= beam {
			break
		}
		*recorded = append(*recorded, sc)
		kept++
		if sc.score >= perfectScore {
			*perfect++
			s.met.IncCounter(metrics.PerfectKeysTotal, 1, metrics.Labels{"size": strconv.Itoa(size)})
		}
	}
	s.met.IncCounter(metrics.CandidatesTotal, float64(kept), metrics.Labels{"size": strconv.Itoa(size), "status": "kept"})
	s.met.IncCounter(metrics.CandidatesTotal, float64(len(scored)-kept), metrics.Labels{"size": strconv.Itoa(size), "status": "rejected"})
	return kept
}

func (s *searcher) observeSize(size int, start time.Time, validated int) {
	labels := metrics.Labels{"size": strconv.Itoa(size)}
	s.met.ObserveHistogram(metrics.SizeDuration, time.Since(start).Seconds(), labels)
	s.met.IncCounter(metrics.CandidatesTotal, float64(validated), metrics.Labels{"size": strconv.Itoa(size), "status": "validated"})
}
