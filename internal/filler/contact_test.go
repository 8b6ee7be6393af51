package filler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindEmail(t *testing.T) {
	assert.Equal(t, "jobs@acme.io", findEmail("CV: jobs@acme.io, thanks"))
	assert.Equal(t, "first.last+hr@mail.example.co.uk", findEmail("to first.last+hr@mail.example.co.uk"))
	assert.Empty(t, findEmail("no address @handle here"))
}

func TestFindPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "international", in: "Call +7 (999) 123-45-67 now", want: "+7 (999) 123-45-67"},
		{name: "compact international", in: "tel +491701234567", want: "+491701234567"},
		{name: "local grouped", in: "office 495 123-45-67", want: "495 123-45-67"},
		{name: "date ignored", in: "Posted 2026-10-17", want: ""},
		{name: "salary ignored", in: "100 000 - 150 000 per month", want: ""},
		{name: "too short", in: "+1 234", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findPhone(tt.in))
		})
	}
}

func TestFindHandle(t *testing.T) {
	assert.Equal(t, "@hr_anna", findHandle("ping @hr_anna"))
	assert.Equal(t, "@recruiter", findHandle("@recruiter is waiting"))
	assert.Empty(t, findHandle("hr@acme.io"))
	assert.Empty(t, findHandle("@abc"))
}

func TestFindContact(t *testing.T) {
	source := "Apply via https://t.me/acme_jobs or call +1 415 555 0100"

	assert.Equal(t, "+1 415 555 0100", findContact(GroupContact, source))
	assert.Equal(t, "+1 415 555 0100", findContact(GroupPhone, source))
	assert.Empty(t, findContact(GroupEmail, source))
	assert.Equal(t, "https://t.me/acme_jobs", findContact(GroupContact, "Apply via https://t.me/acme_jobs"))
	assert.Empty(t, findContact("position", source))
}
