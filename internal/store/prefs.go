package store

// Preferences are user-tunable knobs read at run start. Absent keys fall
// back to defaults so a fresh install can run without any setup.
type Preferences struct {
	//Cancelable delay points, in milliseconds
	VeryShortDelayMs int `json:"veryShortDelayMs"`
	ShortDelayMs     int `json:"shortDelayMs"`
	LongDelayMs      int `json:"longDelayMs"`

	//Relevance gates
	MinMatchScore       int      `json:"minMatchScore"`
	ApplyProductCompany bool     `json:"applyProductCompany"`
	ApplyServiceCompany bool     `json:"applyServiceCompany"`
	IgnoredCompanies    []string `json:"ignoredCompanies"`

	//Run control
	DailyQuota int  `json:"dailyQuota"`
	LoopMode   bool `json:"loopMode"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		VeryShortDelayMs:    500,
		ShortDelayMs:        2000,
		LongDelayMs:         5000,
		MinMatchScore:       3,
		ApplyProductCompany: true,
		ApplyServiceCompany: true,
		DailyQuota:          50,
		LoopMode:            false,
	}
}

// LoadPreferences reads preferences from s, falling back to defaults.
func LoadPreferences(s Store) Preferences {
	prefs := DefaultPreferences()
	_, _ = s.Get(KeyPreferences, &prefs)
	return prefs
}
