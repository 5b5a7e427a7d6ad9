package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/infinityseifer/eda-auto/domain/profile"
)

// Config holds the synthesizer thresholds. The wide-dataset cutoff is
// a product decision, not a derived invariant, so it stays tunable.
type Config struct {
	MaxMissingListed int
	MaxOverviewCols  int
	MaxDriverPairs   int
	WideColumnCutoff int
}

// DefaultConfig returns the standard synthesizer settings
func DefaultConfig() Config {
	return Config{
		MaxMissingListed: 5,
		MaxOverviewCols:  3,
		MaxDriverPairs:   3,
		WideColumnCutoff: 60,
	}
}

const (
	fallbackOverview  = "Basic overview available."
	fallbackDrivers   = "No strong numeric drivers detected (insufficient numeric columns)."
	fallbackAnomalies = "No major data quality issues detected at a glance."
)

// Synthesize maps a profile deterministically into narrative sections.
// Pure function: no I/O, no clock, no randomness.
func Synthesize(p *profile.Profile, cfg Config) Narrative {
	return Narrative{
		ExecutiveSummary: executiveSummary(p, cfg),
		DataOverview:     dataOverview(p, cfg),
		KeyDrivers:       keyDrivers(p, cfg),
		Anomalies:        anomalies(p, cfg),
		Recommendations:  recommendations(),
	}
}

func executiveSummary(p *profile.Profile, cfg Config) string {
	lines := []string{
		fmt.Sprintf("Dataset with %s rows and %d columns.", groupThousands(p.Rows), p.Cols),
	}

	if len(p.MissingByCol) > 0 {
		top := p.MissingByCol
		if len(top) > cfg.MaxMissingListed {
			top = top[:cfg.MaxMissingListed]
		}
		parts := make([]string, len(top))
		for i, m := range top {
			parts[i] = fmt.Sprintf("%s (%d)", m.Column, m.Count)
		}
		lines = append(lines, fmt.Sprintf("Missing values concentrated in: %s.", strings.Join(parts, ", ")))
	}

	if len(p.TopCorrelations) > 0 {
		c0 := p.TopCorrelations[0]
		lines = append(lines, fmt.Sprintf("Strongest numeric relationship: %s ~ %s (|r|=%v).", c0.ColX, c0.ColY, c0.AbsR))
	}

	return strings.Join(lines, " ")
}

func dataOverview(p *profile.Profile, cfg Config) string {
	if len(p.NumericSummary) == 0 {
		return fallbackOverview
	}
	rows := p.NumericSummary
	if len(rows) > cfg.MaxOverviewCols {
		rows = rows[:cfg.MaxOverviewCols]
	}
	lines := make([]string, len(rows))
	for i, s := range rows {
		lines[i] = fmt.Sprintf("%s: mean=%s, std=%s, skew=%s",
			s.Column, sigfig3(s.Mean), sigfig3(s.StdDev), sigfig3(s.Skewness))
	}
	return strings.Join(lines, "\n")
}

func keyDrivers(p *profile.Profile, cfg Config) []string {
	if len(p.TopCorrelations) == 0 {
		return []string{fallbackDrivers}
	}
	pairs := p.TopCorrelations
	if len(pairs) > cfg.MaxDriverPairs {
		pairs = pairs[:cfg.MaxDriverPairs]
	}
	drivers := make([]string, len(pairs))
	for i, c := range pairs {
		drivers[i] = fmt.Sprintf("%s and %s move together (|r|=%v).", c.ColX, c.ColY, c.AbsR)
	}
	return drivers
}

func anomalies(p *profile.Profile, cfg Config) []string {
	var out []string
	if len(p.MissingByCol) > 0 {
		out = append(out, "High missingness in key columns may bias results; consider imputation.")
	}
	if p.Cols > cfg.WideColumnCutoff {
		out = append(out, "Wide dataset; feature selection or dimensionality reduction may help.")
	}
	if len(out) == 0 {
		out = append(out, fallbackAnomalies)
	}
	return out
}

// recommendations is a fixed curated list, independent of profile content
func recommendations() []string {
	return []string{
		"Prioritize data cleaning for columns with highest missingness.",
		"Validate correlations with domain knowledge and downstream modeling.",
		"Standardize numeric features before modeling (z-score).",
	}
}

// groupThousands formats n with comma separators ("1,000")
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// sigfig3 renders x at three significant figures, trimming exponent
// noise the way %.3g does
func sigfig3(x float64) string {
	return strconv.FormatFloat(x, 'g', 3, 64)
}
