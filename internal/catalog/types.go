package catalog

// streamFile is one stream's YAML document.
type streamFile struct {
	Stream      string        `yaml:"stream"`
	Version     int           `yaml:"version"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Questions   []questionDoc `yaml:"questions"`
	Courses     []courseDoc   `yaml:"courses"`
}

type questionDoc struct {
	ID       string      `yaml:"id"`
	Scenario string      `yaml:"scenario"`
	Options  []optionDoc `yaml:"options"`
}

type optionDoc struct {
	ID     string   `yaml:"id"`
	Text   string   `yaml:"text"`
	Traits []string `yaml:"traits"`
}

type courseDoc struct {
	Name           string   `yaml:"name"`
	RequiredTraits []string `yaml:"required_traits"`
	Careers        []string `yaml:"careers"`
	SalaryRange    string   `yaml:"salary_range"`
	Duration       string   `yaml:"duration"`
	Description    string   `yaml:"description"`
}
