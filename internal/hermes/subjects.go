package hermes

const (
	SubjectHistoryCleared = "ecopack.history.cleared"
	SubjectCatalogUpdated = "ecopack.catalog.updated"

	StreamName   = "ECOPACK_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRecommendationRecorded(runID string) string {
	return "ecopack.recommendation." + runID + ".recorded"
}

func SubjectRecommendationEmpty(runID string) string {
	return "ecopack.recommendation." + runID + ".empty"
}

// StreamSubjects lists the subject filters captured by the event stream.
func StreamSubjects() []string {
	return []string{"ecopack.recommendation.>", "ecopack.history.>", "ecopack.catalog.>"}
}
