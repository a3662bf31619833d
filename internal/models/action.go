package models

// ActionKind tags which arm of the Action union a value holds. Browser-only
// kinds may not appear in a Job whose UseBrowser flag is false (see
// Job.Validate).
type ActionKind string

const (
	ActionWaitFor            ActionKind = "wait_for"
	ActionExtract            ActionKind = "extract"
	ActionExtractMultiple    ActionKind = "extract_multiple"
	ActionFetch              ActionKind = "fetch"
	ActionClick              ActionKind = "click"
	ActionWaitAndClick       ActionKind = "wait_and_click"
	ActionType               ActionKind = "type"
	ActionPressKey           ActionKind = "press_key"
	ActionScroll             ActionKind = "scroll"
	ActionScreenshot         ActionKind = "screenshot"
	ActionHover              ActionKind = "hover"
	ActionSelect             ActionKind = "select"
	ActionNavigate           ActionKind = "navigate"
	ActionExecuteScript      ActionKind = "execute_script"
	ActionSetCookie          ActionKind = "set_cookie"
	ActionWaitForNavigation  ActionKind = "wait_for_navigation"
	ActionHandleCookieBanner ActionKind = "handle_cookie_banner"
)

// browserOnlyKinds is the BrowserAction arm of the union (spec §3).
var browserOnlyKinds = map[ActionKind]bool{
	ActionClick:              true,
	ActionWaitAndClick:       true,
	ActionType:               true,
	ActionPressKey:           true,
	ActionScroll:             true,
	ActionScreenshot:         true,
	ActionHover:              true,
	ActionSelect:             true,
	ActionNavigate:           true,
	ActionExecuteScript:      true,
	ActionSetCookie:          true,
	ActionWaitForNavigation:  true,
	ActionHandleCookieBanner: true,
}

// IsBrowserOnly reports whether this action kind is only valid against the
// browser backend.
func (k ActionKind) IsBrowserOnly() bool {
	return browserOnlyKinds[k]
}

// ScrollTargetKind selects which arm of ScrollTarget is populated.
type ScrollTargetKind string

const (
	ScrollTargetElement  ScrollTargetKind = "element"
	ScrollTargetPosition ScrollTargetKind = "position"
	ScrollTargetBottom   ScrollTargetKind = "bottom"
	ScrollTargetTop      ScrollTargetKind = "top"
)

// ScrollTarget is the tagged union described in spec §3.
type ScrollTarget struct {
	Kind     ScrollTargetKind `json:"kind"`
	Selector string           `json:"selector,omitempty"`
	X        int              `json:"x,omitempty"`
	Y        int              `json:"y,omitempty"`
}

// Action is a single step in a Job's action sequence. Only the fields
// relevant to Kind are populated; this mirrors the teacher's preference for
// one flat struct over an interface hierarchy when the union is this small
// and serialization (JSON, over the wire) matters more than type safety at
// construction time.
type Action struct {
	Kind ActionKind `json:"kind"`

	// WaitFor / Click / WaitAndClick / Type / Hover / Select / ExtractMultiple / Extract
	Selector string `json:"selector,omitempty"`
	// WaitFor / WaitAndClick / WaitForNavigation / HandleCookieBanner timeout, in
	// milliseconds. For WaitFor, zero means "probe once, no retry"; the browser
	// worker treats zero as "use the preset's timeout" for WaitForNavigation and
	// HandleCookieBanner, and does not read it for WaitAndClick (which waits
	// for the preset's ElementWait).
	TimeoutMs int `json:"timeout_ms,omitempty"`
	// Extract
	Attr string `json:"attr,omitempty"`
	// ExtractMultiple
	Attrs []string `json:"attrs,omitempty"`
	// Fetch / Navigate
	URL string `json:"url,omitempty"`
	// Type
	Text       string `json:"text,omitempty"`
	ClearFirst bool   `json:"clear_first,omitempty"`
	// PressKey
	Key string `json:"key,omitempty"`
	// Scroll
	Scroll ScrollTarget `json:"scroll,omitempty"`
	// Screenshot
	Path     string `json:"path,omitempty"`
	FullPage bool   `json:"full_page,omitempty"`
	// Select
	Value string `json:"value,omitempty"`
	// ExecuteScript
	Script string `json:"script,omitempty"`
	// SetCookie
	CookieName   string `json:"cookie_name,omitempty"`
	CookieValue  string `json:"cookie_value,omitempty"`
	CookieDomain string `json:"cookie_domain,omitempty"`
}

// Constructors below exist purely for readability at call sites (the same
// convenience the teacher provides for CrawlConfig-shaped values); nothing
// here depends on them.

func WaitFor(selector string, timeoutMs int) Action {
	return Action{Kind: ActionWaitFor, Selector: selector, TimeoutMs: timeoutMs}
}

func Extract(selector, attr string) Action {
	return Action{Kind: ActionExtract, Selector: selector, Attr: attr}
}

func ExtractMultiple(selector string, attrs []string) Action {
	return Action{Kind: ActionExtractMultiple, Selector: selector, Attrs: attrs}
}

func Fetch(url string) Action {
	return Action{Kind: ActionFetch, URL: url}
}

func Click(selector string) Action {
	return Action{Kind: ActionClick, Selector: selector}
}

func WaitAndClick(selector string, timeoutMs int) Action {
	return Action{Kind: ActionWaitAndClick, Selector: selector, TimeoutMs: timeoutMs}
}

func Type(selector, text string, clearFirst bool) Action {
	return Action{Kind: ActionType, Selector: selector, Text: text, ClearFirst: clearFirst}
}

func PressKey(key string) Action {
	return Action{Kind: ActionPressKey, Key: key}
}

func Scroll(target ScrollTarget) Action {
	return Action{Kind: ActionScroll, Scroll: target}
}

func Screenshot(path string, fullPage bool) Action {
	return Action{Kind: ActionScreenshot, Path: path, FullPage: fullPage}
}

func Hover(selector string) Action {
	return Action{Kind: ActionHover, Selector: selector}
}

func Select(selector, value string) Action {
	return Action{Kind: ActionSelect, Selector: selector, Value: value}
}

func Navigate(url string) Action {
	return Action{Kind: ActionNavigate, URL: url}
}

func ExecuteScript(script string) Action {
	return Action{Kind: ActionExecuteScript, Script: script}
}

func SetCookie(name, value, domain string) Action {
	return Action{Kind: ActionSetCookie, CookieName: name, CookieValue: value, CookieDomain: domain}
}

func WaitForNavigation(timeoutMs int) Action {
	return Action{Kind: ActionWaitForNavigation, TimeoutMs: timeoutMs}
}

func HandleCookieBanner(timeoutMs int) Action {
	return Action{Kind: ActionHandleCookieBanner, TimeoutMs: timeoutMs}
}
