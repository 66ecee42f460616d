package groove

import (
	"math"
	"sort"
)

// Gaussian-shaped vote weights for offsets 0, ±1, ±2 around the rounded BPM.
// Split votes across adjacent integer bins still read as one consensus
// because confidence is measured over the ±2 cluster.
var neighborWeights = [3]float64{1.0, 0.6, 0.14}

// voteHistogram maps integer BPM to a decaying vote weight. Recent intervals
// dominate: every accepted interval decays all weights before casting.
type voteHistogram struct {
	cfg   *DetectorConfig
	votes map[int]float64
}

func newVoteHistogram(cfg *DetectorConfig) *voteHistogram {
	return &voteHistogram{
		cfg:   cfg,
		votes: make(map[int]float64),
	}
}

// foldBPM brings a raw tempo into the supported band by repeated octave
// doubling/halving, tolerating a small overshoot at the boundaries.
func (h *voteHistogram) foldBPM(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	upper := float64(h.cfg.MaxBPM) * (1 + h.cfg.FoldTolerance)
	lower := float64(h.cfg.MinBPM) * (1 - h.cfg.FoldTolerance)
	for bpm > upper {
		bpm /= 2
	}
	for bpm < lower {
		bpm *= 2
	}
	return bpm
}

// foldToInt folds and rounds a raw tempo, clamping the tolerated boundary
// overshoot back into the band.
func (h *voteHistogram) foldToInt(bpm float64) int {
	v := int(math.Round(h.foldBPM(bpm)))
	if v < h.cfg.MinBPM {
		v = h.cfg.MinBPM
	}
	if v > h.cfg.MaxBPM {
		v = h.cfg.MaxBPM
	}
	return v
}

// cast converts one accepted interval into Gaussian-weighted votes on the
// folded BPM and its ±2 neighbors.
func (h *voteHistogram) cast(intervalMs float64) {
	if intervalMs <= 0 {
		return
	}
	h.castWeighted(60000.0/intervalMs, 1.0)
}

func (h *voteHistogram) castWeighted(rawBPM, scale float64) {
	center := h.foldToInt(rawBPM)
	if center <= 0 {
		return
	}
	for off := -2; off <= 2; off++ {
		bin := center + off
		if bin < h.cfg.MinBPM || bin > h.cfg.MaxBPM {
			continue
		}
		h.votes[bin] += neighborWeights[absInt(off)] * scale
	}
}

// decay applies exponential forgetting and prunes negligible bins.
func (h *voteHistogram) decay() {
	for bin, w := range h.votes {
		w *= h.cfg.VoteDecay
		if w < h.cfg.VotePruneBelow {
			delete(h.votes, bin)
		} else {
			h.votes[bin] = w
		}
	}
}

// winner returns the highest-weight bin. The scan runs over the band in
// order so ties resolve deterministically to the lower BPM.
func (h *voteHistogram) winner() (int, float64, bool) {
	if len(h.votes) == 0 {
		return 0, 0, false
	}
	bestBPM, bestW := 0, -1.0
	for bin := h.cfg.MinBPM; bin <= h.cfg.MaxBPM; bin++ {
		if w, ok := h.votes[bin]; ok && w > bestW {
			bestBPM, bestW = bin, w
		}
	}
	return bestBPM, bestW, true
}

// clusterVotes sums the weight within ±2 of the given BPM.
func (h *voteHistogram) clusterVotes(bpm int) float64 {
	sum := 0.0
	for bin := bpm - 2; bin <= bpm+2; bin++ {
		sum += h.votes[bin]
	}
	return sum
}

func (h *voteHistogram) totalVotes() float64 {
	sum := 0.0
	for _, w := range h.votes {
		sum += w
	}
	return sum
}

func (h *voteHistogram) size() int {
	return len(h.votes)
}

func (h *voteHistogram) clear() {
	h.votes = make(map[int]float64)
}

// seed casts a strong initial cluster at the folded seed tempo so early
// estimates bias toward a known track tempo without pre-locking.
func (h *voteHistogram) seed(bpm float64) {
	h.castWeighted(bpm, seedVoteScale)
}

const seedVoteScale = 3.0

// topCandidates returns up to n bins ranked by weight descending, ties by
// ascending BPM.
func (h *voteHistogram) topCandidates(n int) []Candidate {
	if n <= 0 || len(h.votes) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(h.votes))
	for bin, w := range h.votes {
		candidates = append(candidates, Candidate{
			BPM:      bin,
			Score:    w,
			Interval: 60000.0 / float64(bin),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].BPM < candidates[j].BPM
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
