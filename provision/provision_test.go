package provision

import (
	"reflect"
	"testing"
)

func TestArgv(t *testing.T) {
	testCases := []struct {
		command string
		port    string
		argv    []string
		wantErr bool
	}{
		{"", "/dev/ttyACM0", nil, false},
		{"stty -F {{port}} raw", "/dev/ttyACM0",
			[]string{"stty", "-F", "/dev/ttyACM0", "raw"}, false},
		{"avrdude -p m328p -P {{port}} -U 'flash:w:fw.hex'", "/dev/ttyUSB1",
			[]string{"avrdude", "-p", "m328p", "-P", "/dev/ttyUSB1", "-U", "flash:w:fw.hex"}, false},
		{`reset "{{port}}`, "/dev/ttyACM0", nil, true},
	}
	for _, tc := range testCases {
		argv, err := Argv(tc.command, tc.port)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Argv(%q) succeeded on an unterminated quote", tc.command)
			}
			continue
		}
		if err != nil {
			t.Errorf("Argv(%q): %v", tc.command, err)
			continue
		}
		if len(argv) == 0 && len(tc.argv) == 0 {
			continue
		}
		if !reflect.DeepEqual(argv, tc.argv) {
			t.Errorf("Argv(%q) = %v, expected %v", tc.command, argv, tc.argv)
		}
	}
}
