package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled table within a report.
type Section struct {
	Title string
	Data  Dataset
}

// Report groups the sections rendered into one exported document.
type Report struct {
	Title    string
	Subtitle string
	Sections []Section
}

func (r Report) empty() bool {
	for _, section := range r.Sections {
		if len(section.Data.Headers) > 0 {
			return false
		}
	}
	return true
}
