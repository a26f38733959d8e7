package domain

import "testing"

func TestBuildDM_Commutative(t *testing.T) {
	pairs := [][2]string{
		{"Ana Souza", "Bruno Lima"},
		{"ZÉ", "alice"},
		{"same", "same"},
		{"", "Carlos"},
	}
	for _, p := range pairs {
		ab := BuildDM(p[0], p[1])
		ba := BuildDM(p[1], p[0])
		if ab != ba {
			t.Errorf("BuildDM(%q,%q)=%q but reversed gives %q", p[0], p[1], ab, ba)
		}
	}
}

func TestBuildDM_Format(t *testing.T) {
	got := BuildDM("Bruno  Lima", "Ana Souza")
	want := "DM_ana_souza_bruno_lima"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !IsDMChannel(got) {
		t.Fatalf("%q should be recognised as a DM channel", got)
	}
}

func TestChatGroup_HasMember(t *testing.T) {
	fixed := FixedChannels()[0]
	if !fixed.HasMember("anyone") {
		t.Error("fixed channels are open to everyone")
	}

	g := ChatGroup{Name: "COMPRAS", SheetName: "COMPRAS", Members: []string{"u1", "u2"}}
	if !g.HasMember("u2") {
		t.Error("expected u2 to be a member")
	}
	if g.HasMember("u3") {
		t.Error("u3 must not be a member")
	}

	empty := ChatGroup{Name: "VAZIO", SheetName: "VAZIO"}
	if empty.HasMember("u1") {
		t.Error("a dynamic group without members is closed")
	}
}

func TestMessageTypeFor(t *testing.T) {
	if MessageTypeFor("https://x/y.png") != MessageImage {
		t.Error("http link should be an image message")
	}
	if MessageTypeFor("") != MessageText {
		t.Error("empty image should be a text message")
	}
	if MessageTypeFor("data:image/png;base64,AAA") != MessageText {
		t.Error("non-http image should be a text message")
	}
}
