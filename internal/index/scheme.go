package index

var (
	bTopics        = []byte("topics")         // id -> topic json
	bOrder         = []byte("order")          // seq -> id
	bKeys          = []byte("keys")           // scoped text key -> id
	bState         = []byte("state")          // next seq, fingerprint
	bIdxCollection = []byte("idx_collection") // collection -> sub-bucket(seq -> id)
	bIdxCategory   = []byte("idx_category")   // collection 0x00 category -> sub-bucket(seq -> id)
	bAdded         = []byte("added")          // seq -> topic json, survives Rebuild

	kNextSeq     = []byte("next_seq")
	kFingerprint = []byte("fingerprint")
)
