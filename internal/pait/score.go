// Package pait implements the pAIt composite rating: an additive weighted
// sum over performance, social acceleration, strategy quality and proof of
// work, with a completeness penalty for thin data. It scores commentator and
// strategy profiles; it performs no I/O.
package pait

import (
	"math"
	"strings"
	"time"
)

// Profile is the input to the scoring rubric. Pointer fields distinguish
// "not reported" from zero; counters at zero count as missing data.
type Profile struct {
	Name                string
	MonthlyReturn       *float64 // percent, sign ignored
	Avg24MonthReturn    *float64 // percent, sign ignored
	StrategyConsistency *float64 // 0-100
	RiskManagement      *float64 // 0-100
	Focus               string
	CNBCAppearances     int
	PublicStatements    int
	PortfolioHoldings   int
	RecentMoves         int
	LastUpdated         time.Time
}

// Breakdown is the dual-score output: a 0-100 composite with per-factor
// contributions, the raw 0-1000 score, and the completeness-adjusted 0-500
// rating with its grade band.
type Breakdown struct {
	Performance        float64 `json:"performance"`         // 0-35
	SocialAcceleration float64 `json:"social_acceleration"` // 0-25
	StrategyQuality    float64 `json:"strategy_quality"`    // 0-20
	ProofOfWork        float64 `json:"proof_of_work"`       // 0-20
	Composite          float64 `json:"composite"`           // 0-100
	RawScore           int     `json:"raw_score"`           // 0-1000
	Completeness       float64 `json:"completeness"`        // 0-100 (%)
	Rating             float64 `json:"rating"`              // 0-500
	Grade              string  `json:"grade"`
}

// Acceleration multipliers for social factors.
const (
	cnbcAccel    = 2.0
	dailyAccel   = 1.4
	weeklyAccel  = 1.2
	monthlyAccel = 1.0
)

// Score evaluates a profile against the rubric at the given time (used for
// commentary recency).
func Score(p Profile, now time.Time) Breakdown {
	b := Breakdown{
		Performance:        performanceScore(p),
		SocialAcceleration: socialScore(p, now),
		StrategyQuality:    strategyQualityScore(p),
		ProofOfWork:        proofOfWorkScore(p),
		RawScore:           rawScore(p),
		Completeness:       completeness(p),
	}
	b.Composite = round1(b.Performance + b.SocialAcceleration + b.StrategyQuality + b.ProofOfWork)
	b.Rating = normalizedRating(b.RawScore, b.Completeness)
	b.Grade = grade(b.Rating)
	return b
}

// performanceScore: monthly-return band (0-15) + consistency (0-10) +
// risk-adjusted return (0-10), capped at 35.
func performanceScore(p Profile) float64 {
	score := 0.0
	if p.MonthlyReturn != nil {
		switch r := math.Abs(*p.MonthlyReturn); {
		case r >= 20:
			score += 15
		case r >= 15:
			score += 12
		case r >= 10:
			score += 9
		case r >= 5:
			score += 6
		default:
			score += 3
		}
	}
	if p.StrategyConsistency != nil {
		score += (*p.StrategyConsistency / 100) * 10
	}
	if p.RiskManagement != nil {
		score += (*p.RiskManagement / 100) * 10
	}
	return round1(math.Min(score, 35))
}

// socialScore: media exposure (0-10, accelerated), engagement (0-8) and
// commentary recency (0-7, accelerated), capped at 25.
func socialScore(p Profile, now time.Time) float64 {
	score := 0.0
	accel := 1.0
	if p.CNBCAppearances > 0 {
		score += math.Min(float64(p.CNBCAppearances)*2, 10)
		accel *= cnbcAccel
	}
	if p.PublicStatements > 0 {
		score += math.Min(float64(p.PublicStatements)*1.5, 8)
	}
	if !p.LastUpdated.IsZero() {
		switch days := now.Sub(p.LastUpdated).Hours() / 24; {
		case days <= 1:
			score += 7 * dailyAccel
		case days <= 7:
			score += 5 * weeklyAccel
		case days <= 30:
			score += 3 * monthlyAccel
		}
	}
	return round1(math.Min(score*accel, 25))
}

// strategyQualityScore: focus keywords (0-8) + repeatability (0-6) + risk
// management (0-6), capped at 20.
func strategyQualityScore(p Profile) float64 {
	score := focusPoints(p.Focus, 8, 6, 4, 2)
	if p.StrategyConsistency != nil {
		score += (*p.StrategyConsistency / 100) * 6
	}
	if p.RiskManagement != nil {
		score += (*p.RiskManagement / 100) * 6
	}
	return round1(math.Min(score, 20))
}

// proofOfWorkScore: 24-month track record band (0-10) + transparency (0-5) +
// verification (0-5), capped at 20.
func proofOfWorkScore(p Profile) float64 {
	score := 0.0
	if p.Avg24MonthReturn != nil {
		switch r := math.Abs(*p.Avg24MonthReturn); {
		case r >= 25:
			score += 10
		case r >= 20:
			score += 8
		case r >= 15:
			score += 6
		case r >= 10:
			score += 4
		default:
			score += 2
		}
	}
	if p.PortfolioHoldings > 0 {
		score += math.Min(float64(p.PortfolioHoldings)*0.5, 5)
	}
	if p.RecentMoves > 0 {
		score += math.Min(float64(p.RecentMoves)*0.5, 5)
	}
	return round1(math.Min(score, 20))
}

// rawScore is the same rubric on a 1000-point scale.
func rawScore(p Profile) int {
	score := 0.0
	if p.MonthlyReturn != nil {
		switch r := math.Abs(*p.MonthlyReturn); {
		case r >= 20:
			score += 150
		case r >= 15:
			score += 120
		case r >= 10:
			score += 90
		case r >= 5:
			score += 60
		default:
			score += 30
		}
	}
	if p.StrategyConsistency != nil {
		score += (*p.StrategyConsistency / 100) * 100
	}
	if p.RiskManagement != nil {
		score += (*p.RiskManagement / 100) * 100
	}
	if p.CNBCAppearances > 0 {
		score += math.Min(float64(p.CNBCAppearances)*20, 100) * cnbcAccel
	}
	if p.PublicStatements > 0 {
		score += math.Min(float64(p.PublicStatements)*15, 80)
	}
	score += focusPoints(p.Focus, 80, 60, 40, 20)
	if p.StrategyConsistency != nil {
		score += (*p.StrategyConsistency / 100) * 60
	}
	if p.RiskManagement != nil {
		score += (*p.RiskManagement / 100) * 60
	}
	if p.Avg24MonthReturn != nil {
		switch r := math.Abs(*p.Avg24MonthReturn); {
		case r >= 25:
			score += 100
		case r >= 20:
			score += 80
		case r >= 15:
			score += 60
		case r >= 10:
			score += 40
		default:
			score += 20
		}
	}
	if p.PortfolioHoldings > 0 {
		score += math.Min(float64(p.PortfolioHoldings)*5, 50)
	}
	if p.RecentMoves > 0 {
		score += math.Min(float64(p.RecentMoves)*5, 50)
	}
	return int(math.Min(math.Round(score), 1000))
}

func focusPoints(focus string, innovative, growth, value, other float64) float64 {
	if focus == "" {
		return 0
	}
	f := strings.ToLower(focus)
	switch {
	case strings.Contains(f, "ai"), strings.Contains(f, "innovation"), strings.Contains(f, "disruptive"):
		return innovative
	case strings.Contains(f, "technology"), strings.Contains(f, "growth"):
		return growth
	case strings.Contains(f, "value"), strings.Contains(f, "dividend"):
		return value
	}
	return other
}

// completeness reports the share of rubric inputs with meaningful data,
// weighted by how many factors consume each field.
func completeness(p Profile) float64 {
	available := 0
	total := 0

	count := func(ok bool, uses int) {
		total += uses
		if ok {
			available += uses
		}
	}
	count(p.MonthlyReturn != nil, 1)
	count(p.Avg24MonthReturn != nil, 2) // performance + proof of work
	count(p.StrategyConsistency != nil, 2)
	count(p.RiskManagement != nil, 2)
	count(p.CNBCAppearances > 0, 1)
	count(p.PublicStatements > 0, 1)
	count(!p.LastUpdated.IsZero(), 1)
	count(strings.TrimSpace(p.Focus) != "", 1)
	count(p.PortfolioHoldings > 0, 1)
	count(p.RecentMoves > 0, 1)

	return round1(float64(available) / float64(total) * 100)
}

// normalizedRating maps the raw score to a 500-point scale and docks half a
// point per missing completeness percent.
func normalizedRating(raw int, completenessPct float64) float64 {
	normalized := float64(raw) / 1000 * 500
	penalty := (100 - completenessPct) * 0.5
	return round1(math.Max(0, normalized-penalty))
}

func grade(rating float64) string {
	switch {
	case rating >= 450:
		return "A+ (Legendary)"
	case rating >= 400:
		return "A (Elite)"
	case rating >= 350:
		return "B+ (Professional)"
	case rating >= 300:
		return "B (Competent)"
	case rating >= 250:
		return "C+ (Developing)"
	case rating >= 200:
		return "C (Novice)"
	}
	return "D (Insufficient Data)"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
