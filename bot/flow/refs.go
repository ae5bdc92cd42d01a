// Package flow builds the storefront's screens: texts plus inline keyboards.
// Builders are pure so navigation can be tested without a live bot.
package flow

import "strings"

// Callback keys and prefixes used by the inline keyboards. Prefixed keys
// embed catalog identifiers directly in the callback data, so a button
// survives restarts without any server-side lookup table.
const (
	KeyMainMenu        = "main_menu"
	KeyBuyCourse       = "buy_course"
	KeyTalkAdmin       = "talk_admin"
	KeyShareScreenshot = "share_screenshot"
	PrefixCourse       = "c_"
	PrefixSubject      = "subj_"
	PrefixDemoVideo    = "demo_vid_"
	PrefixDemoMaterial = "demo_mat_"
)

// SubjectRef renders the callback data of a subject menu button.
func SubjectRef(courseID, subjectID string) string {
	return PrefixSubject + courseID + "_" + subjectID
}

// DemoVideoRef renders the callback data of a demo video button.
func DemoVideoRef(courseID, subjectID string) string {
	return PrefixDemoVideo + courseID + "_" + subjectID
}

// DemoMaterialRef renders the callback data of a demo material button.
func DemoMaterialRef(courseID, subjectID string) string {
	return PrefixDemoMaterial + courseID + "_" + subjectID
}

// SplitSubjectRef recovers course and subject ids from a "<course>_<subject>"
// payload. Course ids start with "c_" and subject ids with "s_", so the
// boundary is the first "_s_" even though both ids contain underscores.
func SplitSubjectRef(payload string) (courseID, subjectID string, ok bool) {
	i := strings.Index(payload, "_s_")
	if i <= 0 {
		return "", "", false
	}
	subjectID = payload[i+1:]
	if len(subjectID) <= len("s_") {
		return "", "", false
	}
	return payload[:i], subjectID, true
}

// ParseRef strips a known prefix and splits the remaining subject payload.
func ParseRef(data, prefix string) (courseID, subjectID string, ok bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", "", false
	}
	return SplitSubjectRef(strings.TrimPrefix(data, prefix))
}
