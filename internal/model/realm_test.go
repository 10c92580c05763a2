package model

import "testing"

func TestRealm_Address(t *testing.T) {
	r := Realm{Host: "127.0.0.1", Port: 8085}
	if got := r.Address(); got != "127.0.0.1:8085" {
		t.Errorf("Address() = %q, want %q", got, "127.0.0.1:8085")
	}
}

func TestRealmFlags_Has(t *testing.T) {
	f := RealmFlagOffline | RealmFlagRecommended
	if !f.Has(RealmFlagOffline) {
		t.Error("expected Offline to be set")
	}
	if f.Has(RealmFlagInvalid) {
		t.Error("expected Invalid to be unset")
	}
}

func TestParseBanStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    BanStatus
		wantErr bool
	}{
		{in: "none", want: BanNone},
		{in: "Temporary", want: BanTemporary},
		{in: "suspended", want: BanTemporary},
		{in: "PERMANENT", want: BanPermanent},
		{in: "forever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBanStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBanStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBanStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  arlyon "); got != "ARLYON" {
		t.Errorf("NormalizeUsername = %q", got)
	}
}
