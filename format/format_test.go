package format

import "testing"

func TestValidate(t *testing.T) {
	if err := Raw.Validate(); err != nil {
		t.Errorf("Raw.Validate() = %v, want nil", err)
	}
	if err := Matroska.Validate(); err == nil {
		t.Error("Matroska.Validate() = nil, want ErrUnsupported")
	}
}
