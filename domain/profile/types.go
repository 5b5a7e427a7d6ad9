package profile

// NumericSummary captures the distribution of one numeric column
type NumericSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skew"`
	Kurtosis float64 `json:"kurtosis"`
}

// MissingCount ranks one column by its missing-cell count
type MissingCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// ValueCount is one entry in a categorical frequency table
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoryTable holds the top values of one categorical column
type CategoryTable struct {
	Column string       `json:"column"`
	Top    []ValueCount `json:"top"`
}

// Profile is the profiler's structured output. Produced fresh per
// run, never persisted; the narrative and deck stages read it within
// the same run only.
type Profile struct {
	DatasetID       string            `json:"dataset_id"`
	Rows            int               `json:"n_rows"`
	Cols            int               `json:"n_cols"`
	Columns         []string          `json:"columns"`
	Types           map[string]string `json:"dtypes"`
	MissingByCol    []MissingCount    `json:"missing_by_col"`
	NumericSummary  []NumericSummary  `json:"numeric_summary"`
	TopCorrelations []Correlation     `json:"top_correlations"`
	Categories      []CategoryTable   `json:"categories"`
	// Charts maps chart title to the image path actually written.
	// Charts that were attempted and failed never appear here.
	Charts map[string]string `json:"charts"`
	// ChartOrder lists successful chart titles in emission order:
	// missingness, correlation, then per-column charts in column
	// order. The deck lays slides out in this order.
	ChartOrder []string `json:"chart_order"`
}

// Correlation is one ranked absolute-correlation column pair
type Correlation struct {
	ColX string  `json:"col_x"`
	ColY string  `json:"col_y"`
	AbsR float64 `json:"abs_r"`
}
