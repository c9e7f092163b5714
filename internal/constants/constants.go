package constants

// 验证尝试类型
const (
	AttemptKindEmailSend    = "email_send"
	AttemptKindEmailPresent = "email_present"
	AttemptKindPhoneSend    = "phone_send"
	AttemptKindPhonePresent = "phone_present"
)

// 邮箱验证流程类型
const (
	FlowRegister      = "register"
	FlowResetPassword = "reset_password"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 会话类型
const (
	SessionKindEmail = "email"
	SessionKindUser  = "user"
)

// 验证码场景
const (
	CaptchaSceneSignin        = "signin"
	CaptchaSceneEmailSendCode = "email_send_code"
)

// 验证码提供方
const (
	CaptchaProviderNone      = "none"
	CaptchaProviderImage     = "image"
	CaptchaProviderTurnstile = "turnstile"
)

// 异步任务
const (
	QueueDefault          = "default"
	TaskSecurityNotice    = "security:notice_email"
	SecurityEventPassword = "password_changed"
	SecurityEventPhone    = "phone_attached"
)
