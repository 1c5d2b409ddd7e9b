package email

// Template names an embedded file under templates/.
type Template string

const (
	TemplateWelcome Template = "welcome"
)
