// Package share stages untrusted payloads as files in a private temp
// directory, hands them to a Presenter and deletes them once the
// presentation completes.
//
// A typical flow:
//
//	mgr := share.NewManager()
//	s := share.NewSharer(mgr, presenter)
//	defer s.Close()
//
//	err := s.ShareData(ctx, base64Payload, "report.pdf", "Quarterly report")
//
// Staged files are named "{uuid}-{sanitized name}" and always live directly
// inside the staging directory. Names containing ".." are rejected outright.
package share
