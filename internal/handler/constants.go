package handler

const (
	AdminAuthPrefix = "/api/admin-auth"

	MsgAdminTokenSent   = "Admin token generated and sent to %s. Check your messages."
	MsgAdminTokenLogged = "Admin token generated. Messaging channel not configured; check the server console."
	MsgAdminTokenFailed = "Failed to generate admin token"
)
