package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevelFollowsEnv(t *testing.T) {
	tests := []struct {
		value string
		want  logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"false", logrus.InfoLevel},
		{"junk", logrus.InfoLevel},
		{"1", logrus.DebugLevel},
		{"true", logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(DebugEnv, tt.value)

			if got := New().GetLevel(); got != tt.want {
				t.Fatalf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscardIsSilent(t *testing.T) {
	l := Discard()
	l.WithField("layer", 1).Error("nothing")

	if l.IsLevelEnabled(logrus.ErrorLevel) {
		t.Fatal("discard logger should not enable error level")
	}
}
