package media

import "errors"

var (
	// ErrFolderTraversal is returned for folder names that climb out of the media folder.
	ErrFolderTraversal = errors.New("Folder names are not allowed to include “../”") //nolint:staticcheck // shown to users

	// ErrNoFile is returned when neither a filename nor an upload was given.
	ErrNoFile = errors.New("No media file was provided.") //nolint:staticcheck // shown to users

	// ErrThumbnailNotImage is returned for thumbnails whose content is not an image.
	ErrThumbnailNotImage = errors.New("Thumbnail files must contain images.") //nolint:staticcheck // shown to users

	// ErrUpload is returned when an uploaded file cannot be stored.
	ErrUpload = errors.New("There was an error uploading your file.") //nolint:staticcheck // shown to users
)

// FilenameCharError reports a forbidden character in a filename.
type FilenameCharError struct {
	Char string
}

func (e FilenameCharError) Error() string {
	return "Filenames are not allowed to contain the character “" + e.Char + "”."
}

// FilenameExtensionError reports a forbidden, script like, extension.
type FilenameExtensionError struct {
	Extension string
}

func (e FilenameExtensionError) Error() string {
	return "Filenames are not allowed to have the extension “" + e.Extension + "”."
}

// FileExistsError reports an upload that would overwrite an existing file.
type FileExistsError struct {
	Name string
}

func (e FileExistsError) Error() string {
	return "The file " + e.Name + " already exists. Use another filename."
}

// FolderError reports a media folder that is missing and could not be created.
type FolderError struct {
	Path string
	Err  error
}

func (e FolderError) Error() string {
	return "The folder " + e.Path + " does not exist, and it could not be created."
}

func (e FolderError) Unwrap() error {
	return e.Err
}
