package share

// Options is the payload accepted by Sharer.Share. Field names follow the
// webview's JSON.
type Options struct {
	Text  string       `json:"text,omitempty"`
	Title string       `json:"title,omitempty"`
	URL   string       `json:"url,omitempty"`
	Files []SharedFile `json:"files,omitempty"`
}

// SharedFile is one base64 encoded file. Data may also be a data: URL.
type SharedFile struct {
	Data     string `json:"data"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
}

func (o Options) empty() bool {
	return o.Text == "" && o.URL == "" && len(o.Files) == 0
}

// request builds the presenter request. Staged files are listed in the order
// they were given.
func (o Options) request(files []*StagedFile) Request {
	req := Request{Title: o.Title}
	if o.Text != "" {
		req.Items = append(req.Items, Item{Kind: ItemText, Value: o.Text})
	}
	if o.URL != "" {
		req.Items = append(req.Items, Item{Kind: ItemURL, Value: o.URL})
	}
	for _, f := range files {
		req.Items = append(req.Items, Item{
			Kind:     ItemFile,
			Value:    f.Path,
			Name:     f.SanitizedName,
			MIMEType: f.MIMEType,
		})
	}
	return req
}
