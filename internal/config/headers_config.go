package config

type HeadersConfig interface {
	GetUserAgent() string
	GetAcceptLanguage() string
}

type Headers struct{}

var _ HeadersConfig = Headers{}

func (Headers) GetUserAgent() string {
	return GetEnv("EVENTS_USER_AGENT", "go-events-client/1.0")
}

func (Headers) GetAcceptLanguage() string {
	return GetEnv("EVENTS_ACCEPT_LANGUAGE", "en")
}
