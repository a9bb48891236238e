package taxonomy

// DefaultKeywords returns the banner keywords that mark a device as exposed
// in the web search path.
func DefaultKeywords() []string {
	return []string{
		"webcam",
		"surveillance",
		"camera",
		"rtsp",
		"unauthorized",
		"default",
		"admin",
	}
}

// LegacyKeywords returns the narrower keyword set used by the standalone
// classify command.
func LegacyKeywords() []string {
	return []string{"webcam", "surveillance"}
}
