package penalties

import (
	"encoding/json"
	"testing"
)

func TestEveryCodeRoundTripsThroughItsLetter(t *testing.T) {
	seen := map[byte]Code{}
	for _, code := range All() {
		ch := code.Char()
		if prev, dup := seen[ch]; dup {
			t.Fatalf("letter %c shared by %v and %v", ch, prev, code)
		}
		seen[ch] = code
		if got := FromChar(ch); got != code {
			t.Fatalf("letter %c: expected %v, got %v", ch, code, got)
		}
	}
}

func TestOutOfBoundsUsesLetterO(t *testing.T) {
	if OutOfBounds.Char() != 'O' {
		t.Fatalf("expected O, got %c", OutOfBounds.Char())
	}
	if FromChar('B') != BackBlock {
		t.Fatalf("expected B to stay back block")
	}
}

func TestFromCharIsCaseInsensitiveAndFallsBack(t *testing.T) {
	if FromChar('x') != CutTrack {
		t.Fatalf("expected lowercase x to be cut track")
	}
	if FromChar('Q') != Unknown {
		t.Fatalf("expected unknown for Q")
	}
}

func TestParseRejectsMultipleLetters(t *testing.T) {
	if _, err := Parse("AB"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Parse(""); err == nil {
		t.Fatalf("expected error for empty code")
	}
}

func TestCodeJSON(t *testing.T) {
	body, err := json.Marshal([]Code{Forearms, DelayOfGame})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `["F","Z"]` {
		t.Fatalf("unexpected body %s", body)
	}

	var got Code
	if err := json.Unmarshal([]byte(`"e"`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != Elbows {
		t.Fatalf("expected elbows, got %v", got)
	}
}
