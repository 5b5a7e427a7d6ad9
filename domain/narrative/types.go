package narrative

// Narrative holds the five prose sections derived from a profile.
// Pure data: no hidden state, fully determined by the input profile.
type Narrative struct {
	ExecutiveSummary string   `json:"executive_summary"`
	DataOverview     string   `json:"data_overview"`
	KeyDrivers       []string `json:"key_drivers"`
	Anomalies        []string `json:"anomalies"`
	Recommendations  []string `json:"recommendations"`
}
