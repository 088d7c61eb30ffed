package domain

// Category группа команд в справке
type Category struct {
	Emoji string
	Name  string
}

var (
	CategoryLogging     = Category{Emoji: "📘", Name: "Logging"}
	CategoryInformation = Category{Emoji: "💊", Name: "Information"}
	CategoryUtility     = Category{Emoji: "🛠", Name: "Utility"}
)

// Categories порядок разделов в /help
var Categories = []Category{CategoryLogging, CategoryInformation, CategoryUtility}

func (c Category) String() string {
	return c.Emoji + " " + c.Name
}

// OptionType тип аргумента команды
type OptionType string

const (
	OptionString  OptionType = "string"
	OptionInteger OptionType = "integer"
	OptionNumber  OptionType = "number"
	OptionBoolean OptionType = "boolean"
	OptionUser    OptionType = "user"
)

// Choice допустимое значение аргумента
type Choice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Option описание аргумента
type Option struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Type         OptionType `json:"type"`
	Required     bool       `json:"required"`
	Choices      []Choice   `json:"choices,omitempty"`
	MinValue     *int64     `json:"min_value,omitempty"`
	Autocomplete bool       `json:"autocomplete,omitempty"`
}

// Subcommand именованная под-операция со своей схемой
type Subcommand struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []Option `json:"options,omitempty"`
}

// CommandDescriptor проекция команды для публикации каталога
type CommandDescriptor struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Options     []Option     `json:"options,omitempty"`
	Subcommands []Subcommand `json:"subcommands,omitempty"`
}

// Usage строка вида "<drug> <dose> [hide]"
func Usage(options []Option) string {
	var usage string
	for i, opt := range options {
		if i > 0 {
			usage += " "
		}
		if opt.Required {
			usage += "<" + opt.Name + ">"
		} else {
			usage += "[" + opt.Name + "]"
		}
	}
	return usage
}

func MinValue(v int64) *int64 {
	return &v
}
