package jobs

type JobType string

const (
	JobSendOTPEmail JobType = "send_otp_email"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobSendOTPEmail:
		return true
	default:
		return false
	}
}
