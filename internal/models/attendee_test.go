package models

import "testing"

func TestValidateAttendee(t *testing.T) {
	tests := []struct {
		name       string
		attendee   Attendee
		wantFields []string
	}{
		{
			name:     "email only",
			attendee: Attendee{Name: "Ana", Email: "ana@example.com"},
		},
		{
			name:     "phone only",
			attendee: Attendee{Name: "Ana", PhoneNumber: "4155550100"},
		},
		{
			name:       "neither contact",
			attendee:   Attendee{Name: "Ana"},
			wantFields: []string{"email"},
		},
		{
			name:       "missing name",
			attendee:   Attendee{Email: "ana@example.com"},
			wantFields: []string{"name"},
		},
		{
			name:       "bad email and short phone",
			attendee:   Attendee{Name: "Ana", Email: "ana@", PhoneNumber: "123"},
			wantFields: []string{"email", "phone_number"},
		},
		{
			name:       "phone with letters",
			attendee:   Attendee{Name: "Ana", PhoneNumber: "41555501OO"},
			wantFields: []string{"phone_number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateAttendee(&tt.attendee)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("expected %d errors, got %v", len(tt.wantFields), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("error %d: expected field %q, got %q", i, field, errs[i].Field)
				}
			}
		})
	}
}
