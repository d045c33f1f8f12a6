package auth

import (
	"strings"
	"testing"
)

func TestPasswordRulesReportsEveryMiss(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "empty",
			password: "",
			want: []string{
				"Mínimo 8 caracteres",
				"Al menos una mayúscula",
				"Al menos una minúscula",
				"Al menos un número",
				"Al menos un carácter especial",
			},
		},
		{
			name:     "no special",
			password: "Abcdefg1",
			want:     []string{"Al menos un carácter especial"},
		},
		{
			name:     "no digit",
			password: "Abcdefg!",
			want:     []string{"Al menos un número"},
		},
		{
			name:     "short but otherwise complete",
			password: "Ab1!",
			want:     []string{"Mínimo 8 caracteres"},
		},
		{
			name:     "all lower",
			password: "abcdefgh",
			want: []string{
				"Al menos una mayúscula",
				"Al menos un número",
				"Al menos un carácter especial",
			},
		},
		{
			name:     "seven accented characters",
			password: "ññÑ1!aa",
			want:     []string{"Mínimo 8 caracteres"},
		},
		{
			name:     "valid",
			password: "Passw0rd!",
			want:     nil,
		},
		{
			name:     "valid accented",
			password: "Contraseña1!",
			want:     nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := passwordRules(tc.password)
			if len(got) != len(tc.want) {
				t.Fatalf("rules = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("rules = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestValidateRegisterBounds(t *testing.T) {
	valid := RegisterInput{
		Username: "operador1",
		Password: "Passw0rd!",
		FullName: "Operador Uno",
		Role:     RoleOperator,
	}
	if rules := validateRegister(valid); len(rules) != 0 {
		t.Fatalf("valid input rejected: %v", rules)
	}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   string
	}{
		{"username too short", func(in *RegisterInput) { in.Username = "ab" },
			"Username debe tener entre 3 y 50 caracteres"},
		{"username two accented characters", func(in *RegisterInput) { in.Username = "ññ" },
			"Username debe tener entre 3 y 50 caracteres"},
		{"username too long", func(in *RegisterInput) { in.Username = strings.Repeat("a", 51) },
			"Username debe tener entre 3 y 50 caracteres"},
		{"full name too short", func(in *RegisterInput) { in.FullName = "X" },
			"Nombre completo debe tener entre 2 y 100 caracteres"},
		{"full name too long", func(in *RegisterInput) { in.FullName = strings.Repeat("x", 101) },
			"Nombre completo debe tener entre 2 y 100 caracteres"},
		{"unknown role", func(in *RegisterInput) { in.Role = "root" },
			"Rol desconocido"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			rules := validateRegister(in)
			if len(rules) != 1 || rules[0] != tc.want {
				t.Fatalf("rules = %v, want [%s]", rules, tc.want)
			}
		})
	}
}

func TestValidateRegisterBoundaryLengths(t *testing.T) {
	in := RegisterInput{
		Username: "abc",
		Password: "Passw0rd!",
		FullName: "Ab",
		Role:     RoleViewer,
	}
	if rules := validateRegister(in); len(rules) != 0 {
		t.Fatalf("minimum lengths rejected: %v", rules)
	}
	in.Username = strings.Repeat("u", 50)
	in.FullName = strings.Repeat("n", 100)
	if rules := validateRegister(in); len(rules) != 0 {
		t.Fatalf("maximum lengths rejected: %v", rules)
	}
	// Accented input sits at the same character budget even though each ñ is
	// two bytes.
	in.Username = strings.Repeat("ñ", 50)
	in.FullName = strings.Repeat("ñ", 100)
	if rules := validateRegister(in); len(rules) != 0 {
		t.Fatalf("accented maximum lengths rejected: %v", rules)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleSupervisor, RoleOperator, RoleViewer} {
		if !ValidRole(role) {
			t.Fatalf("role %q rejected", role)
		}
	}
	for _, role := range []string{"", "Admin", "root", "superuser"} {
		if ValidRole(role) {
			t.Fatalf("role %q accepted", role)
		}
	}
}
