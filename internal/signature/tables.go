// Package signature implements the behavioral signature tables and the
// window classifier. Each violation category has its own keyword set;
// matching is case-insensitive substring containment, tolerant rather
// than precise.
package signature

// codingToolKeywords match coding-assistant and interview-helper windows.
// Includes brand names and generic terms that legitimate interview setups
// never show on screen.
var codingToolKeywords = []string{
	"interviewcoder",
	"interview coder",
	"interviewassist",
	"leetcode helper",
	"cheetah",
	"coder",
	"assistant",
	"solver",
	"cheat",
	"hint",
	"auto",
	"generate",
	"copilot",
	"chatgpt",
	"claude",
	"gpt",
	"cursor",
	"codeium",
	"tabnine",
}

// overlayKeywords match generic overlay/capture/share tooling. A match alone
// is not enough: the window must also sit above the normal layer or cover
// most of the screen.
var overlayKeywords = []string{
	"overlay",
	"capture",
	"record",
	"share",
	"broadcast",
	"cast",
	"mirror",
	"stream",
	"float",
	"always on top",
}

// recordingKeywords match screen-recording and conferencing products.
var recordingKeywords = []string{
	"quicktime",
	"screen recording",
	"screenshot",
	"obs",
	"zoom",
	"teams",
	"webex",
	"meet",
	"skype",
	"discord",
	"loom",
	"snagit",
	"camtasia",
	"screenflow",
	"teamviewer",
	"anydesk",
}

// systemProcessAllowList names processes exempt from the layer-anomaly rule.
// These legitimately render far above the normal layer.
var systemProcessAllowList = []string{
	"window server",
	"windowserver",
	"dock",
	"systemuiserver",
	"menu extra",
	"notification center",
	"notificationcenter",
	"control center",
	"controlcenter",
	"spotlight",
	"finder",
}

// ProcessBlacklist is the fixed set of disallowed application display names.
// Matched exactly, case-sensitive, against the running-process list.
var ProcessBlacklist = []string{
	"OBS",
	"obs",
	"QuickTime Player",
	"zoom.us",
	"TeamViewer",
	"AnyDesk",
	"Loom",
	"Screenflow",
	"Snagit",
	"Interview Coder",
	"InterviewCoder",
}
