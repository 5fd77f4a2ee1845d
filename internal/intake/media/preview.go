package media

type nopPreview struct{}

func (nopPreview) Release() {}

type nopPreviews struct{}

func (nopPreviews) Create(File) (Preview, error) { return nopPreview{}, nil }

// NopPreviews returns a factory whose previews hold no resources.
func NopPreviews() PreviewFactory { return nopPreviews{} }
