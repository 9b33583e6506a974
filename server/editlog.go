package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/janelia-flyem/protolog"

	"github.com/janelia-flyem/labelpaint/labelpaint"
)

const jsonMsgTypeID uint16 = 1 // used for protolog

// EditLog is an append-only protolog file of JSON edit records.
type EditLog struct {
	sync.RWMutex
	f       *os.File
	orderID uint64
}

// OpenEditLog opens or creates the edit log at path.
func OpenEditLog(path string) (*EditLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR|os.O_SYNC, 0644)
	if err != nil {
		return nil, err
	}
	return &EditLog{f: f}, nil
}

// Log appends a record for an edit.  A nil EditLog ignores the call.
func (el *EditLog) Log(action, user string, fields map[string]interface{}) error {
	if el == nil {
		return nil
	}
	record := map[string]interface{}{
		"TimeUnix": time.Now().Unix(),
		"Action":   action,
	}
	if user != "" {
		record["User"] = user
	}
	for k, v := range fields {
		record[k] = v
	}

	el.Lock()
	defer el.Unlock()
	el.orderID++
	record["MutationOrderID"] = el.orderID
	jsonmsg, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshaling JSON for %s edit: %v", action, err)
	}
	w := protolog.NewTypedWriter(jsonMsgTypeID, el.f)
	_, err = w.Write(jsonmsg)
	return err
}

// WriteJSON streams all edit records to the writer as a JSON array.
func (el *EditLog) WriteJSON(w io.Writer) error {
	if el == nil {
		_, err := w.Write([]byte("[]"))
		return err
	}
	el.Lock()
	defer func() {
		if _, err := el.f.Seek(0, 2); err != nil {
			labelpaint.Criticalf("unable to seek to end of edit log: %v\n", err)
		}
		el.Unlock()
	}()
	if _, err := el.f.Seek(0, 0); err != nil {
		return fmt.Errorf("unable to seek to beginning of edit log: %v", err)
	}
	r := protolog.NewReader(el.f)
	if _, err := w.Write([]byte("[")); err != nil {
		return err
	}
	numEdits := 0
	for {
		typeID, jsondata, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if typeID != jsonMsgTypeID {
			labelpaint.Criticalf("Unknown message type in edit log: %s\n", string(jsondata))
			continue
		}
		if numEdits != 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := w.Write(jsondata); err != nil {
			return err
		}
		numEdits++
	}
	_, err := w.Write([]byte("]"))
	return err
}

// Close closes the log file.
func (el *EditLog) Close() error {
	if el == nil {
		return nil
	}
	el.Lock()
	defer el.Unlock()
	return el.f.Close()
}
