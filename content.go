package unscraper

// Cleaner removes boilerplate markup (scripts, navigation, chrome) from a
// rendered page before conversion.
type Cleaner interface {
	Clean(html string) (string, error)
}

// Converter transforms cleaned markup into link and table preserving text.
type Converter interface {
	Convert(html string) (string, error)
}
