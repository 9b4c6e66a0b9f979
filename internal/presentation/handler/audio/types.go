package audio

// connectRequest joins the caller to a meeting's audio
type connectRequest struct {
	Mode string `json:"mode" example:"microphone" enums:"microphone,listen_only"`
}

// disconnectResponse reports how many legs were dropped
type disconnectResponse struct {
	Released  int  `json:"released"`
	Cancelled bool `json:"cancelledTransfer"`
}
