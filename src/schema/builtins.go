package schema

// BytesPerMB is the divisor used for every byte to megabyte conversion.
const BytesPerMB = 1_000_000

const (
	fmtInt   = "0,0"
	fmtFloat = "0,0.00"
)

func mbConversions() []Conversion {
	return []Conversion{
		{Raw: "byteRecv", Column: "MBRecv", Divisor: BytesPerMB},
		{Raw: "byteRcvDrop", Column: "MBRcvDrop", Divisor: BytesPerMB},
		{Raw: "byteSent", Column: "MBSent", Divisor: BytesPerMB},
		{Raw: "byteSndDrop", Column: "MBSndDrop", Divisor: BytesPerMB},
		{Raw: "byteAvailRcvBuf", Column: "MBAvailRcvBuf", Divisor: BytesPerMB, Optional: true},
		{Raw: "byteAvailSndBuf", Column: "MBAvailSndBuf", Divisor: BytesPerMB, Optional: true},
	}
}

func packetsPanels() []Panel {
	return []Panel{
		{
			Key: "packets", Side: SideSender, Tag: "packets",
			Title: "Packets (Sender Side)", YLabel: "Number of Packets", YFormat: fmtInt,
			Lines: []Line{
				{"pktSent", "Sent", "green"},
				{"pktSndLoss", "Lost", "orange"},
				{"pktRetrans", "Retransmitted", "blue"},
				{"pktSndDrop", "Dropped", "red"},
				{"pktFlightSize", "On Flight", "black"},
			},
		},
		{
			Key: "packets", Side: SideReceiver, Tag: "packets",
			Title: "Packets (Receiver Side)", YLabel: "Number of Packets", YFormat: fmtInt,
			Lines: []Line{
				{"pktRecv", "Received", "green"},
				{"pktRcvLoss", "Lost", "orange"},
				{"pktRcvRetrans", "Retransmitted", "blue"},
				{"pktRcvBelated", "Belated", "grey"},
				{"pktRcvDrop", "Dropped", "red"},
			},
		},
	}
}

func availBufferPanel(key string, side Side, sending bool, tag string) Panel {
	if sending {
		return Panel{
			Key: key, Side: side, Tag: tag,
			Title: "Available Sending Buffer Size", YLabel: "MB", YFormat: fmtFloat,
			Lines:    []Line{{"MBAvailSndBuf", "", "green"}},
			Requires: []string{"byteAvailSndBuf"},
		}
	}
	return Panel{
		Key: key, Side: side, Tag: tag,
		Title: "Available Receiving Buffer Size", YLabel: "MB", YFormat: fmtFloat,
		Lines:    []Line{{"MBAvailRcvBuf", "", "green"}},
		Requires: []string{"byteAvailRcvBuf"},
	}
}

// SRT is the plain single-socket SRT core statistics layout.
func SRT() *Schema {
	panels := packetsPanels()
	panels = append(panels,
		Panel{
			Key: "bytes", Side: SideSender,
			Title: "Megabytes (Sender Side)", YLabel: "MB", YFormat: fmtFloat,
			Lines: []Line{{"MBSent", "Sent", "green"}, {"MBSndDrop", "Dropped", "red"}},
		},
		Panel{
			Key: "bytes", Side: SideReceiver,
			Title: "Megabytes (Receiver Side)", YLabel: "MB", YFormat: fmtFloat,
			Lines: []Line{{"MBRecv", "Received", "green"}, {"MBRcvDrop", "Dropped", "red"}},
		},
		Panel{
			Key: "rate", Side: SideSender, Tag: "rate",
			Title: "Sending Rate", YLabel: "Rate (Mbps)", YFormat: fmtFloat,
			Lines: []Line{{"mbpsSendRate", "Sendrate", "green"}},
		},
		Panel{
			Key: "rate", Side: SideReceiver, Tag: "rate",
			Title: "Receiving Rate", YLabel: "Rate (Mbps)", YFormat: fmtFloat,
			Lines: []Line{{"mbpsRecvRate", "", "green"}},
		},
		Panel{
			Key: "rtt", Tag: "rtt",
			Title: "Round-Trip Time", YLabel: "RTT (ms)",
			Lines: []Line{{"msRTT", "", "blue"}},
		},
		Panel{
			Key: "bw",
			Title: "Bandwidth", YLabel: "Bandwidth (Mbps)", YFormat: fmtInt,
			Lines: []Line{{"mbpsBandwidth", "", "green"}},
		},
		Panel{
			Key: "window_size",
			Title: "Window Size", YLabel: "Number of Packets", YFormat: fmtInt,
			Lines: []Line{
				{"pktFlowWindow", "Flow Window", "green"},
				{"pktCongestionWindow", "Congestion Window", "red"},
			},
		},
		Panel{
			Key: "pktsendperiod", Side: SideSender, Tag: "pktsendperiod",
			Title: "Packet Sending Period", YLabel: "Period (μs)",
			Lines: []Line{{"usPktSndPeriod", "", "blue"}},
		},
		Panel{
			Key: "msbuf", Side: SideSender,
			Title: "Sender Buffer Fullness", YLabel: "Timespan (ms)",
			Lines: []Line{{"msSndBuf", "", "blue"}},
		},
		Panel{
			Key: "msbuf", Side: SideReceiver,
			Title: "Receiver Buffer Fullness", YLabel: "Timespan (ms)",
			Lines: []Line{{"msRcvBuf", "", "blue"}},
		},
		// The own side's buffer is exported; the peer side is shown next to it.
		availBufferPanel("availbuf", SideSender, true, "availbuffer"),
		availBufferPanel("availbuf", SideReceiver, false, "availbuffer"),
		availBufferPanel("availbuf_peer", SideSender, false, ""),
		availBufferPanel("availbuf_peer", SideReceiver, true, ""),
		Panel{
			Key: "fec", FEC: true,
			Title: "FEC - Packets (Receiver Side)", YLabel: "Number of Packets",
			Lines: []Line{
				{"pktRcvFilterExtra", "Extra received", "blue"},
				{"pktRcvFilterSupply", "Reconstructed", "green"},
				{"pktRcvFilterLoss", "Not reconstructed", "red"},
			},
		},
		Panel{
			Key: "latency",
			Title: "Latency", YLabel: "Latency (ms)",
			Lines: []Line{{"RCVLATENCYms", "", "blue"}},
		},
	)
	return &Schema{
		Name:        "srt",
		Title:       "SRT Stats Visualization",
		XColumn:     "Time",
		XLabel:      "Time (ms)",
		XFormat:     fmtInt,
		Sided:       true,
		Required:    []string{"Time", "byteRecv", "byteRcvDrop", "byteSent", "byteSndDrop"},
		Conversions: mbConversions(),
		Panels:      panels,
		Grid: [][]string{
			{"packets", "window_size"},
			{"bytes", "rtt"},
			{"rate", "bw"},
			{"pktsendperiod", "msbuf"},
			{"availbuf", "availbuf_peer"},
			{"fec"},
			{"latency"},
		},
	}
}

// Group is the grouped (bonded) sockets layout; rows carry a SocketID and the
// grid is repeated for the group and every member socket.
func Group() *Schema {
	panels := packetsPanels()
	panels = append(panels,
		Panel{
			Key: "rate", Side: SideSender, Tag: "rate",
			Title: "Sending Rate", YLabel: "Rate (Mbps)", YFormat: fmtFloat,
			Lines: []Line{
				{"mbpsSendRate", "Sendrate", "green"},
				{"mbpsMaxBW", "Bandwidth Limit", "black"},
			},
			Requires: []string{"mbpsSendRate"},
		},
		Panel{
			Key: "rate", Side: SideReceiver, Tag: "rate",
			Title: "Receiving Rate", YLabel: "Rate (Mbps)", YFormat: fmtFloat,
			Lines: []Line{{"mbpsRecvRate", "", "green"}},
		},
	)
	return &Schema{
		Name:        "group",
		Title:       "SRT Stats Visualization",
		XColumn:     "Time",
		XLabel:      "Time (ms)",
		XFormat:     fmtInt,
		GroupBy:     "SocketID",
		Sided:       true,
		Required:    []string{"Time", "SocketID", "byteRecv", "byteRcvDrop", "byteSent", "byteSndDrop"},
		Conversions: mbConversions(),
		Panels:      panels,
		Grid:        [][]string{{"packets", "rate"}},
	}
}

// QUIC is the SRT over QUIC layout. Counters are cumulative (*Total) and the
// per-interval values are derived from them.
func QUIC() *Schema {
	return &Schema{
		Name:      "quic",
		Title:     "SRT Stats Visualization",
		XColumn:   "sTime",
		XLabel:    "Time (s)",
		XFormat:   fmtFloat,
		Timepoint: "Timepoint",
		Required: []string{
			"Timepoint",
			"pktSentTotal", "pktLostTotal", "pktRecvAck", "pktRecvLateAck",
			"pktRecvTotal", "pktDecryptFailTotal", "bytesRecvTotal",
		},
		Instants: []Instant{
			{Cumulative: "pktSentTotal", Column: "pktSent", Integer: true},
			{Cumulative: "pktLostTotal", Column: "pktLost", Integer: true},
			{Cumulative: "pktRecvTotal", Column: "pktRecv", Integer: true},
			{Cumulative: "pktDecryptFailTotal", Column: "pktDecryptFail", Integer: true},
			{Cumulative: "bytesRecvTotal", Column: "bytesRecv"},
		},
		Panels: []Panel{
			{
				Key: "packets_snd_total", Title: "Packets (Sender Side), Total",
				YLabel: "Number of Packets", YFormat: fmtInt,
				Lines: []Line{{"pktSentTotal", "Sent", "green"}, {"pktLostTotal", "Lost", "red"}},
			},
			{
				Key: "packets_snd_instant", Title: "Packets (Sender Side), Instant",
				YLabel: "Number of Packets", YFormat: fmtInt,
				Lines: []Line{{"pktSent", "Sent", "green"}, {"pktLost", "Lost", "red"}},
			},
			{
				Key: "packets_rcv_total", Title: "Packets (Receiver Side), Total",
				YLabel: "Number of Packets", YFormat: fmtInt,
				Lines: []Line{{"pktRecvTotal", "Received", "green"}, {"pktDecryptFailTotal", "Decryption Failed", "red"}},
			},
			{
				Key: "packets_rcv_instant", Title: "Packets (Receiver Side), Instant",
				YLabel: "Number of Packets", YFormat: fmtInt,
				Lines: []Line{{"pktRecv", "Received", "green"}, {"pktDecryptFail", "Decryption Failed", "red"}},
			},
			{
				Key: "acks_total", Title: "Acknowledgment Packets (Sender Side), Total",
				YLabel: "Number of Packets", YFormat: fmtInt,
				Lines: []Line{{"pktRecvAck", "Received Acks", "orange"}, {"pktRecvLateAck", "Received Late Acks", "blue"}},
			},
			{
				Key: "bytes_rcv_total", Title: "Bytes Received (Receiver Side), Total",
				YLabel: "Bytes", YFormat: fmtInt,
				Lines: []Line{{"bytesRecvTotal", "", "green"}},
			},
			{
				Key: "bytes_rcv_instant", Title: "Bytes Received (Receiver Side), Instant",
				YLabel: "Bytes", YFormat: fmtInt,
				Lines: []Line{{"bytesRecv", "", "green"}},
			},
		},
		Grid: [][]string{
			{"packets_snd_instant", "packets_snd_total"},
			{"", "acks_total"},
			{"packets_rcv_instant", "packets_rcv_total"},
			{"bytes_rcv_instant", "bytes_rcv_total"},
		},
	}
}
