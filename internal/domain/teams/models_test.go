package teams

import (
	"encoding/json"
	"testing"
)

func TestParseAcceptsNamesAndNumbers(t *testing.T) {
	cases := []struct {
		raw  string
		want Team
	}{
		{"home", Home},
		{"HOME", Home},
		{"1", Home},
		{" away ", Away},
		{"2", Away},
	}
	for _, tc := range cases {
		got, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: unexpected error %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, err := Parse("3"); err == nil {
		t.Fatalf("expected error for unknown team")
	}
}

func TestTeamJSONRoundTripsAsName(t *testing.T) {
	body, err := json.Marshal(struct {
		Team Team `json:"team"`
	}{Away})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"team":"away"}` {
		t.Fatalf("unexpected body %s", body)
	}

	var decoded struct {
		Team Team `json:"team"`
	}
	if err := json.Unmarshal([]byte(`{"team":"1"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Team != Home {
		t.Fatalf("expected home, got %s", decoded.Team)
	}
}

func TestOtherAndPair(t *testing.T) {
	if Home.Other() != Away || Away.Other() != Home {
		t.Fatalf("expected other to swap teams")
	}

	var p Pair[int]
	*p.Get(Away) = 4
	if p.Away != 4 || p.Home != 0 {
		t.Fatalf("expected only away set, got %+v", p)
	}
	if (Score{Home: 3, Away: 9}).Get(Away) != 9 {
		t.Fatalf("expected away score")
	}
}
