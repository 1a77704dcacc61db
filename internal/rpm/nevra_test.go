package rpm_test

import (
	"testing"

	"github.com/edge-curation/rpm-mirror/internal/rpm"
)

func TestParseFilename(t *testing.T) {
	cases := []struct {
		filename string
		name     string
		version  string
		release  string
		arch     string
	}{
		{"bash-5.2.26-3.el9.x86_64.rpm", "bash", "5.2.26", "3.el9", "x86_64"},
		{"gcc-c++-11.4.1-2.el9.aarch64.rpm", "gcc-c++", "11.4.1", "2.el9", "aarch64"},
		{"tzdata-2024a-1.noarch.rpm", "tzdata", "2024a", "1", "noarch"},
		{"python3-pip-21.3.1-1.el9.noarch.rpm", "python3-pip", "21.3.1", "1.el9", "noarch"},
	}

	for _, tc := range cases {
		id, err := rpm.ParseFilename(tc.filename)
		if err != nil {
			t.Errorf("ParseFilename(%q): %v", tc.filename, err)
			continue
		}
		if id.Name != tc.name || id.Version != tc.version || id.Release != tc.release || id.Arch != tc.arch {
			t.Errorf("ParseFilename(%q) = %+v", tc.filename, id)
		}
		if id.Epoch != 0 {
			t.Errorf("filename epoch must be 0, got %d", id.Epoch)
		}
		if got := id.Filename(); got != tc.filename {
			t.Errorf("round trip: got %q, want %q", got, tc.filename)
		}
	}
}

func TestParseFilenameRejectsMalformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"bash.rpm",
		"bash-5.2.26.rpm",
		"bash-5.2.26-3.el9.x86_64",
		"readme.txt",
		".rpm",
		"-1-1.noarch.rpm",
	} {
		if _, err := rpm.ParseFilename(bad); err == nil {
			t.Errorf("ParseFilename(%q) should fail", bad)
		}
	}
}

func TestIdentityKey(t *testing.T) {
	a := rpm.Identity{Name: "bash", EVR: rpm.NewEVR(0, "5.2", "1"), Arch: "x86_64", Repo: "baseos"}
	b := rpm.Identity{Name: "bash", EVR: rpm.NewEVR(0, "5.3", "1"), Arch: "x86_64", Repo: "baseos"}
	if a.Key() != b.Key() {
		t.Error("same name+arch must share a key across versions")
	}
	c := rpm.Identity{Name: "bash", Arch: "aarch64"}
	if a.Key() == c.Key() {
		t.Error("different arch must not share a key")
	}
}

func TestEVRString(t *testing.T) {
	if got := rpm.NewEVR(0, "1.2", "3").String(); got != "1.2-3" {
		t.Errorf("got %q", got)
	}
	if got := rpm.NewEVR(2, "1.2", "3.el9").String(); got != "2:1.2-3.el9" {
		t.Errorf("got %q", got)
	}
}
