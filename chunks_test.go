package png

import "testing"

func TestIHDRRoundTrip(t *testing.T) {
	h := Header{Width: 800, Height: 600, BitDepth: 8, ColorType: RGBAColor, Interlace: true}
	data := encodeIHDR(h)
	got, err := parseIHDR(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestIHDRRejectsWrongLength(t *testing.T) {
	_, err := parseIHDR(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := KindOf(err); kind != ChunkLength {
		t.Fatalf("got kind %v, want ChunkLength", kind)
	}
}

func TestPLTERoundTrip(t *testing.T) {
	p := Palette{Entries: []RGB{{1, 2, 3}, {4, 5, 6}}}
	got, err := parsePLTE(encodePLTE(p))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 2 || got.Entries[1] != p.Entries[1] {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestPLTERejectsNonMultipleOfThree(t *testing.T) {
	_, err := parsePLTE([]byte{1, 2, 3, 4})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestTRNSPaletteTooLong(t *testing.T) {
	_, err := parseTRNS([]byte{1, 2, 3}, PaletteColor, 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := KindOf(err); kind != AlphaPaletteLen {
		t.Fatalf("got kind %v, want AlphaPaletteLen", kind)
	}
}

func TestTRNSGrayKeyRoundTrip(t *testing.T) {
	tr := Transparency{HasGrayKey: true, GrayKey: 300}
	got, err := parseTRNS(encodeTRNS(tr, GrayColor), GrayColor, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasGrayKey || got.GrayKey != 300 {
		t.Fatalf("got %+v", got)
	}
}

func TestBKGDByLength(t *testing.T) {
	b, err := parseBKGD([]byte{5})
	if err != nil || !b.HasPaletteIndex || b.PaletteIndex != 5 {
		t.Fatalf("got %+v, err %v", b, err)
	}
	_, err = parseBKGD([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for 3-byte bKGD")
	}
}

func TestPHYSRoundTrip(t *testing.T) {
	p := Physical{PixelsPerUnitX: 2835, PixelsPerUnitY: 2835, IsMeter: true}
	got, err := parsePHYS(encodePHYS(p))
	if err != nil || got != p {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestPHYSRejectsBadUnit(t *testing.T) {
	data := encodePHYS(Physical{})
	data[8] = 7
	_, err := parsePHYS(data)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := KindOf(err); kind != PhysUnits {
		t.Fatalf("got kind %v, want PhysUnits", kind)
	}
}

func TestTIMERoundTrip(t *testing.T) {
	tm := Time{Year: 2026, Month: 7, Day: 30, Hour: 12, Minute: 0, Second: 1}
	got, err := parseTIME(encodeTIME(tm))
	if err != nil || got != tm {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestTEXTRoundTrip(t *testing.T) {
	e := TextEntry{Keyword: "Author", Text: "jane doe"}
	got, err := parseTEXT(encodeTEXT(e))
	if err != nil || got != e {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestTEXTLossyReplacesInvalidUTF8(t *testing.T) {
	got, err := parseTEXT([]byte{'k', 0, 0xFF, 'a'})
	if err != nil {
		t.Fatal(err)
	}
	want := "�a"
	if got.Text != want {
		t.Fatalf("got %q, want %q", got.Text, want)
	}
}

func TestTEXTRejectsEmptyKeyword(t *testing.T) {
	_, err := parseTEXT([]byte{0, 'h', 'i'})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := KindOf(err); kind != TextSize {
		t.Fatalf("got kind %v, want TextSize", kind)
	}
}

func TestZTXTRoundTrip(t *testing.T) {
	e := CompressedTextEntry{Keyword: "Comment", Text: "a fairly long comment worth compressing, repeated repeated repeated"}
	got, err := parseZTXT(encodeZTXT(e, 6))
	if err != nil || got != e {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestITXTRoundTripUncompressed(t *testing.T) {
	e := InternationalTextEntry{Keyword: "Title", LanguageTag: "en", TranslatedKeyword: "Title", Text: "hello"}
	got, err := parseITXT(encodeITXT(e, 6))
	if err != nil {
		t.Fatal(err)
	}
	if got != e {
		t.Fatalf("got %+v, want %+v", got, e)
	}
}

func TestITXTRoundTripCompressed(t *testing.T) {
	e := InternationalTextEntry{Keyword: "Title", Compressed: true, LanguageTag: "en", TranslatedKeyword: "Title", Text: "hello world hello world hello world"}
	got, err := parseITXT(encodeITXT(e, 6))
	if err != nil {
		t.Fatal(err)
	}
	if got != e {
		t.Fatalf("got %+v, want %+v", got, e)
	}
}
