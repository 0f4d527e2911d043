package schema

// bolt bucket names; S3 derives bucket names from the same constants and
// mongo uses them as collection names.
const (
	MetadataBucket  = "deed-metadata"  // cid -> pinned metadata document
	AttemptBucket   = "deed-attempt"   // attemptId -> attempt journal entry
	ConstantsBucket = "deed-constants" // misc service constants
)
