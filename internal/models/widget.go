package models

// Widget is a named dashboard capability. Static reference data: no
// mutation path beyond the seed.
type Widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultWidgets returns the widget catalog seeded on first run.
func DefaultWidgets() []Widget {
	names := []string{
		"Weather Details",
		"Currency Conversion",
		"Time Conversion",
		"Headlines / News",
		"World Countries",
		"Personal Notes",
		"Habit Tracker",
		"Emergency Numbers",
		"Language Translator",
		"PDF Converter",
		"Goal Tracking",
	}

	widgets := make([]Widget, 0, len(names))
	for _, name := range names {
		widgets = append(widgets, Widget{Name: name})
	}
	return widgets
}
