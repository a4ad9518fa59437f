package store

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func providers(t *testing.T) map[string]Provider {
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Provider{
		"sqlite": sqlite,
		"memory": NewMemStore(),
	}
}

func forEachProvider(t *testing.T, test func(t *testing.T, p Provider)) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			test(t, p)
		})
	}
}

func TestPutGet(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p Provider) {
		modified := time.UnixMilli(1234567890123)
		entry := Entry{
			Key:         "ns:/file",
			ContentType: "text/plain",
			ModifiedAt:  modified,
			ETag:        `"5-abc"`,
			MaxAge:      2 * time.Minute,
			Immutable:   true,
			Bytes:       []byte("hello"),
		}
		if err := p.Put(entry); err != nil {
			t.Fatal(err)
		}
		got, ok, err := p.Get("ns:/file")
		if err != nil || !ok {
			t.Fatalf("Get returned %v %v", ok, err)
		}
		if got.ContentType != entry.ContentType || got.ETag != entry.ETag ||
			got.MaxAge != entry.MaxAge || !got.Immutable || !bytes.Equal(got.Bytes, entry.Bytes) {
			t.Fatalf("Got %+v", got)
		}
		if !got.ModifiedAt.Equal(modified) {
			t.Fatalf("ModifiedAt is %v, expected %v", got.ModifiedAt, modified)
		}
		if !p.Has("ns:/file") {
			t.Fatal("Has returned false")
		}
	})
}

func TestGetMissing(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p Provider) {
		_, ok, err := p.Get("ns:/missing")
		if err != nil || ok {
			t.Fatalf("Get returned %v %v", ok, err)
		}
		if p.Has("ns:/missing") {
			t.Fatal("Has returned true")
		}
	})
}

func TestPutReplaces(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p Provider) {
		p.Put(Entry{Key: "ns:/file", Bytes: []byte("one")})
		p.Put(Entry{Key: "ns:/file", Bytes: []byte("two")})
		got, _, _ := p.Get("ns:/file")
		if string(got.Bytes) != "two" {
			t.Fatalf("Bytes are %q", got.Bytes)
		}
	})
}

func TestEmptyBytes(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p Provider) {
		p.Put(Entry{Key: "ns:/empty"})
		got, ok, err := p.Get("ns:/empty")
		if err != nil || !ok {
			t.Fatalf("Get returned %v %v", ok, err)
		}
		if got.Bytes == nil || len(got.Bytes) != 0 {
			t.Fatalf("Bytes are %#v", got.Bytes)
		}
	})
}

func TestPurge(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p Provider) {
		p.Put(Entry{Key: "ns:/file", Bytes: []byte("x")})
		if err := p.Purge("ns:/file"); err != nil {
			t.Fatal(err)
		}
		if p.Has("ns:/file") {
			t.Fatal("Entry still present")
		}
		if err := p.Purge("ns:/file"); err != nil {
			t.Fatalf("Purging missing key: %v", err)
		}
	})
}

func TestPrefixes(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p Provider) {
		for _, key := range []string{"a:/2", "a:/1", "b:/1", "a_x:/1", "a%:/1"} {
			p.Put(Entry{Key: key, Bytes: []byte(key)})
		}

		entries, err := p.All("a:")
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 || entries[0].Key != "a:/1" || entries[1].Key != "a:/2" {
			t.Fatalf("All returned %+v", entries)
		}

		var keys []string
		if err := p.Keys("a_", func(key string) { keys = append(keys, key) }); err != nil {
			t.Fatal(err)
		}
		if len(keys) != 1 || keys[0] != "a_x:/1" {
			t.Fatalf("Keys returned %v", keys)
		}

		keys = nil
		p.Keys("a%", func(key string) { keys = append(keys, key) })
		if len(keys) != 1 || keys[0] != "a%:/1" {
			t.Fatalf("Keys returned %v", keys)
		}
	})
}

func TestMemStoreCopiesBytes(t *testing.T) {
	m := NewMemStore()
	b := []byte("hello")
	m.Put(Entry{Key: "k", Bytes: b})
	b[0] = 'j'
	got, _, _ := m.Get("k")
	if string(got.Bytes) != "hello" {
		t.Fatalf("Stored bytes changed to %q", got.Bytes)
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "persist.db")
	s := NewSQLiteStore(filename)
	s.Put(Entry{Key: "ns:/file", Bytes: []byte("kept")})
	s.Close()

	s = NewSQLiteStore(filename)
	defer s.Close()
	got, ok, err := s.Get("ns:/file")
	if err != nil || !ok || string(got.Bytes) != "kept" {
		t.Fatalf("Get returned %q %v %v", got.Bytes, ok, err)
	}
}
