package datadog

import (
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"stageload/internal/metrics"
)

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v", got)
	}
	got := labelsToTags(metrics.Labels{"step": "load", "job": "stageload"})
	want := []string{"job:stageload", "step:load"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("labelsToTags = %v, want %v", got, want)
	}
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("expected error for empty Addr")
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
}

func TestBackend_SendsToAgent(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen: %v", err)
	}
	defer pc.Close()

	b, err := NewBackend(Config{Addr: pc.LocalAddr().String(), Namespace: "test."})
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.ObserveHistogram(metrics.StepDuration, 0.5, metrics.Labels{"step": "load"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	buf := make([]byte, 4096)
	_ = pc.SetReadDeadline(time.Now().Add(3 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("no packet from statsd client: %v", err)
	}
	payload := string(buf[:n])
	if !strings.Contains(payload, "test."+metrics.StepDuration) || !strings.Contains(payload, "step:load") {
		t.Fatalf("payload = %q", payload)
	}
}
