package hapserver

import (
	"errors"
	"testing"
)

func TestResponse_End(t *testing.T) {
	r := NewResponse(make([]byte, 256))
	r.Start(200)
	r.Add("Content-Type", ContentTypeHAPJSON)
	r.End([]byte(`{"status":0}`))

	if r.Err() != nil {
		t.Fatalf("Err() = %v", r.Err())
	}
	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: application/hap+json\r\n" +
		"Content-Length: 12\r\n" +
		"\r\n" +
		`{"status":0}`
	if got := string(r.Bytes()); got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
	if r.Status() != 200 {
		t.Errorf("Status() = %d, want 200", r.Status())
	}
}

func TestResponse_InPlaceBody(t *testing.T) {
	r := NewResponse(make([]byte, 256))
	r.Start(200)
	r.Add("Content-Type", ContentTypePairingTLV8)

	data := r.Data()
	if len(data) == 0 {
		t.Fatal("Data() is empty")
	}
	n := copy(data, []byte{0x06, 0x01, 0x02})
	r.SetContentLength(n)

	if r.Err() != nil {
		t.Fatalf("Err() = %v", r.Err())
	}
	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: application/pairing+tlv8\r\n" +
		"Content-Length: 3\r\n" +
		"\r\n" +
		"\x06\x01\x02"
	if got := string(r.Bytes()); got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
	if r.Data() != nil {
		t.Error("Data() after SetContentLength should be nil")
	}
}

func TestResponse_Restart(t *testing.T) {
	r := NewResponse(make([]byte, 256))
	r.Start(500)
	r.End([]byte("first"))

	r.Start(204)
	r.End(nil)
	want := "HTTP/1.1 204 No Content\r\nContent-Length: 0\r\n\r\n"
	if got := string(r.Bytes()); got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}

func TestResponse_Overflow(t *testing.T) {
	t.Run("status line", func(t *testing.T) {
		r := NewResponse(make([]byte, 8))
		r.Start(200)
		if !errors.Is(r.Err(), ErrResponseTooLarge) {
			t.Errorf("Err() = %v, want %v", r.Err(), ErrResponseTooLarge)
		}
		if len(r.Bytes()) != 0 {
			t.Errorf("Bytes() = %q, want empty", r.Bytes())
		}
	})

	t.Run("body", func(t *testing.T) {
		r := NewResponse(make([]byte, 48))
		r.Start(200)
		r.End(make([]byte, 64))
		if !errors.Is(r.Err(), ErrResponseTooLarge) {
			t.Errorf("Err() = %v, want %v", r.Err(), ErrResponseTooLarge)
		}
	})

	t.Run("content length", func(t *testing.T) {
		r := NewResponse(make([]byte, 128))
		r.Start(200)
		r.SetContentLength(len(r.Data()) + 1)
		if !errors.Is(r.Err(), ErrResponseTooLarge) {
			t.Errorf("Err() = %v, want %v", r.Err(), ErrResponseTooLarge)
		}
	})
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "OK"},
		{404, "Not Found"},
		{StatusConnectionAuthorizationRequired, "Connection Authorization Required"},
		{599, "Unknown"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.code); got != tt.want {
			t.Errorf("StatusText(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
