package observability

import (
	"testing"
	"time"

	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/state", 200, 12*time.Millisecond)
	RecordEventDecoded("tcp", "results")
	RecordDecodeError("ws")
	RecordReconnect("tcp")
	SetConnectionState("tcp", 2)
	RecordSnapshotApply("oncourse")
	RecordLookup("ok", 30*time.Millisecond)
}
