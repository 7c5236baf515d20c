package backend

import "testing"

func TestNormalizeSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "multiline with quotes and tabs",
			in:   "SELECT *\n\tFROM t\nWHERE a = \"x\"  ",
			want: "SELECT *  FROM t WHERE a = %22x%22",
		},
		{name: "already normalized", in: "SHOW TABLES", want: "SHOW TABLES"},
		{name: "surrounding whitespace", in: "\n\t SELECT 1 \t\n", want: "SELECT 1"},
		{name: "empty", in: "", want: ""},
		{name: "backticks untouched", in: "SHOW CREATE TABLE `t`", want: "SHOW CREATE TABLE `t`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSQL(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeSQL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeSQL(got); again != got {
				t.Errorf("NormalizeSQL is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
