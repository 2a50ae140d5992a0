package mail

import "fmt"

// FeedbackService sends the two emails behind a feedback submission: a
// notification to the team inbox and an auto-reply to the sender.
type FeedbackService struct {
	mailer    Mailer
	teamEmail string
}

// NewFeedbackService creates the service. mailer may be nil (disabled).
func NewFeedbackService(mailer Mailer, teamEmail string) *FeedbackService {
	return &FeedbackService{mailer: mailer, teamEmail: teamEmail}
}

// Enabled reports whether feedback email delivery is configured.
func (s *FeedbackService) Enabled() bool {
	return s != nil && s.mailer != nil && s.teamEmail != ""
}

// Submit sends the team notification, then the auto-reply. The auto-reply
// is best-effort: its failure does not fail the submission.
func (s *FeedbackService) Submit(name, email, message string) error {
	if !s.Enabled() {
		return fmt.Errorf("feedback email not configured")
	}

	notification := fmt.Sprintf("New feedback received\n\nName: %s\nEmail: %s\n\nMessage:\n%s\n",
		name, email, message)
	if err := s.mailer.Send(s.teamEmail, "New feedback from "+name, notification); err != nil {
		return err
	}

	_ = s.mailer.Send(email, autoReplySubject, autoReplyBody(name))
	return nil
}

const autoReplySubject = "We received your feedback | فیدباکەکەت پێگەیشت"

// autoReplyBody renders the bilingual English / Kurdish Sorani auto-reply.
func autoReplyBody(name string) string {
	return fmt.Sprintf(`Dear %s,

Thank you for reaching out to the University of Sulaimani. We have received
your feedback and our team will review it shortly. If a reply is needed, we
will contact you at this address.

Best regards,
University of Sulaimani

---

%s بەڕێز،

سوپاس بۆ پەیوەندیکردنت بە زانکۆی سلێمانی. فیدباکەکەت پێمان گەیشت و تیمەکەمان
بە زووترین کات پێداچوونەوەی بۆ دەکات. ئەگەر پێویستی بە وەڵام هەبێت، لە هەمان
ئیمەیڵەوە پەیوەندیت پێوە دەکەین.

لەگەڵ ڕێزدا،
زانکۆی سلێمانی
`, name, name)
}
