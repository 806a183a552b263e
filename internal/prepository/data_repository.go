package prepository

import (
	"encoding/json"

	"github.com/pioneer-storage/pioneer/internal/pdata"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// DataRepository is the concrete Repository specialization named
// explicitly: it stores serialized pdata.Data records named by
// string keys, joined under its root.
type DataRepository = Repository[*pdata.Data]

// NewDataRepository builds a DataRepository rooted at root under backend.
func NewDataRepository(backend pstorage.Client, root pstorage.StoragePath) *DataRepository {
	return New[*pdata.Data](backend, root, encodeData, decodeData)
}

func encodeData(d *pdata.Data) ([]byte, error) {
	return json.Marshal(d)
}

func decodeData(raw []byte) (*pdata.Data, error) {
	d := pdata.New(nil)
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, err
	}
	return d, nil
}
