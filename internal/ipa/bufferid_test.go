package ipa

import "testing"

func TestEncodeDecodeParamRoundTrip(t *testing.T) {
	for i := 0; i < 5; i++ {
		id := EncodeParam(i)
		if !id.IsParam() {
			t.Errorf("EncodeParam(%d).IsParam() = false", i)
		}
		if id.IsStat() {
			t.Errorf("EncodeParam(%d).IsStat() = true, want false", i)
		}
		if id.Index() != i {
			t.Errorf("EncodeParam(%d).Index() = %d", i, id.Index())
		}
	}
}

func TestEncodeDecodeStatRoundTrip(t *testing.T) {
	for i := 0; i < 5; i++ {
		id := EncodeStat(i)
		if !id.IsStat() {
			t.Errorf("EncodeStat(%d).IsStat() = false", i)
		}
		if id.IsParam() {
			t.Errorf("EncodeStat(%d).IsParam() = true, want false", i)
		}
		if id.Index() != i {
			t.Errorf("EncodeStat(%d).Index() = %d", i, id.Index())
		}
	}
}

func TestParamAndStatIDsNeverCollide(t *testing.T) {
	for i := 0; i < 8; i++ {
		if EncodeParam(i) == EncodeStat(i) {
			t.Errorf("EncodeParam(%d) == EncodeStat(%d)", i, i)
		}
	}
}
