package nav

// Intent is a user action raised by a screen. Only the Machine interprets
// intents.
type Intent interface {
	intentName() string
}

type (
	ChooseLogin      struct{}
	ChooseRegister   struct{}
	ChooseGuest      struct{}
	SwitchToLogin    struct{}
	SwitchToRegister struct{}

	SubmitLogin struct {
		Username string
		Password string
	}

	SubmitRegister struct {
		Username string
		Email    string
		Password string
		Confirm  string
	}

	// BeginOAuth starts waiting for the Google sign-in redirect.
	BeginOAuth struct{}

	// OAuthCallback carries the query parameters of the sign-in redirect.
	OAuthCallback struct {
		Token    string
		Username string
		UserID   string
	}

	Answer struct {
		Value int
	}
	GoBack struct{}

	OpenHistory     struct{}
	BackFromHistory struct{}

	SaveResult struct{}
	SkipSave   struct{}

	Logout        struct{}
	BackToWelcome struct{}

	// Reload clears a failure and starts over from welcome.
	Reload struct{}
)

func (ChooseLogin) intentName() string      { return "choose login" }
func (ChooseRegister) intentName() string   { return "choose register" }
func (ChooseGuest) intentName() string      { return "choose guest" }
func (SwitchToLogin) intentName() string    { return "switch to login" }
func (SwitchToRegister) intentName() string { return "switch to register" }
func (SubmitLogin) intentName() string      { return "submit login" }
func (SubmitRegister) intentName() string   { return "submit register" }
func (BeginOAuth) intentName() string       { return "begin oauth" }
func (OAuthCallback) intentName() string    { return "oauth callback" }
func (Answer) intentName() string           { return "answer" }
func (GoBack) intentName() string           { return "go back" }
func (OpenHistory) intentName() string      { return "open history" }
func (BackFromHistory) intentName() string  { return "back from history" }
func (SaveResult) intentName() string       { return "save result" }
func (SkipSave) intentName() string         { return "skip save" }
func (Logout) intentName() string           { return "logout" }
func (BackToWelcome) intentName() string    { return "back to welcome" }
func (Reload) intentName() string           { return "reload" }

// Name returns a human-readable intent name for logs and errors.
func Name(i Intent) string {
	if i == nil {
		return "<nil>"
	}
	return i.intentName()
}
