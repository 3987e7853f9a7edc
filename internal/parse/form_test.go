package parse

import "testing"

func TestFormState(t *testing.T) {
	form := FormState(subjectsPage)

	if form["ICSID"] != "abc123" {
		t.Errorf("ICSID = %q, want abc123", form["ICSID"])
	}
	if form["ICStateNum"] != "3" {
		t.Errorf("ICStateNum = %q, want 3", form["ICStateNum"])
	}
	if _, ok := form["PTS_SELECT$0"]; ok {
		t.Error("checkboxes are not hidden inputs and must not appear in form state")
	}
}

func TestFormStateEmptyValue(t *testing.T) {
	form := FormState(`<input type="hidden" name="ICAction" value=""/>`)
	if v, ok := form["ICAction"]; !ok || v != "" {
		t.Errorf("expected empty ICAction to be captured, got %v", form)
	}
}
