package config

type WorkerKeyStruct struct {
	PersistAttestationAuditQueue string
	PersistQuestionOrderQueue    string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAttestationAuditQueue: "persist_attestation_audit_queue",
	PersistQuestionOrderQueue:    "persist_question_order_queue",
}
