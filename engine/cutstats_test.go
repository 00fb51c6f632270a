package engine

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// Every counter carries a distinct value and must show up both in the log
// object and in the printed lines.
func TestCutStatisticsReportEveryCounter(t *testing.T) {
	var s CutStatistics
	v := reflect.ValueOf(&s).Elem()
	n := v.NumField()
	for i := 0; i < n; i++ {
		v.Field(i).SetUint(uint64(1001 + i))
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Object("cuts", s).Msg("cut-statistics")
	var event struct {
		Cuts map[string]uint64 `json:"cuts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("decode %s: %v", buf.String(), err)
	}
	logged := map[uint64]bool{}
	for _, val := range event.Cuts {
		logged[val] = true
	}

	printed := strings.Join(s.Lines(), "\n")
	for i := 0; i < n; i++ {
		want := uint64(1001 + i)
		name := v.Type().Field(i).Name
		if !logged[want] {
			t.Errorf("%s missing from the log object %v", name, event.Cuts)
		}
		if !strings.Contains(printed, strconv.FormatUint(want, 10)) {
			t.Errorf("%s missing from Lines:\n%s", name, printed)
		}
	}
}
